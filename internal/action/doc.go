// Package action implements the conversational capabilities exposed to the
// agent runtime: token transfer, token swap, portfolio lookup, wallet
// listing, and order history. Each capability declares its registration
// metadata (name, description, examples, trigger phrases), an applicability
// predicate, and a handler that turns a chat message into a vendor call and
// a human-readable reply.
package action
