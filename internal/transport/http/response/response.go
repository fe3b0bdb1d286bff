package response

import "sick-fits/internal/domain"

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New never leaves data as null.
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error uses the code's default message when customMsg is empty.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError renders a service error. Internal details stay out of the body.
func FromError(err error) Resp {
	k := domain.KindOf(err)
	if k == domain.KindInternal {
		return Error(CodeServerError, "")
	}
	return Error(CodeForKind(k), err.Error())
}
