package graphql

import "sick-fits/internal/domain"

// queryError exposes the domain error kind as extensions.code.
type queryError struct {
	err error
}

func (e *queryError) Error() string {
	if domain.KindOf(e.err) == domain.KindInternal {
		return "Internal server error"
	}
	return e.err.Error()
}

func (e *queryError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": domain.KindOf(e.err).String()}
}

func (e *queryError) Unwrap() error { return e.err }
