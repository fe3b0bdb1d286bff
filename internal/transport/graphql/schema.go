package graphql

// Schema is the public storefront API.
const Schema = `
schema {
	query: Query
	mutation: Mutation
}

scalar Time

enum Permission {
	ADMIN
	USER
	ITEMCREATE
	ITEMUPDATE
	ITEMDELETE
	PERMISSIONUPDATE
}

enum ItemOrderByInput {
	createdAt_DESC
	createdAt_ASC
	price_ASC
	price_DESC
}

type SuccessMessage {
	message: String
}

type User {
	id: ID!
	name: String!
	email: String!
	permissions: [Permission!]!
	createdAt: Time!
}

type Item {
	id: ID!
	title: String!
	description: String!
	image: String
	largeImage: String
	price: Int!
	user: User
	createdAt: Time!
	updatedAt: Time!
}

type AggregateItem {
	count: Int!
}

type ItemConnection {
	aggregate: AggregateItem!
}

input ItemWhereUniqueInput {
	id: ID!
}

type Query {
	items(skip: Int, first: Int, orderBy: ItemOrderByInput): [Item!]!
	item(where: ItemWhereUniqueInput!): Item
	itemsConnection: ItemConnection!
	me: User
	users: [User!]!
}

type Mutation {
	createItem(title: String!, description: String!, price: Int!, image: String, largeImage: String): Item!
	updateItem(id: ID!, title: String, description: String, price: Int): Item!
	deleteItem(id: ID!): Item
	signup(email: String!, password: String!, name: String!): User!
	signin(email: String!, password: String!): User!
	signout: SuccessMessage
	requestReset(email: String!): SuccessMessage
	resetPassword(resetToken: String!, password: String!, confirmPassword: String!): User!
	updatePermissions(permissions: [Permission!]!, userId: ID!): User
}
`
