// Package okto wraps the Okto wallet-as-a-service HTTP API behind a typed
// session object. It owns credential configuration, the one-time identity
// login, and every outbound vendor call (transfer, portfolio, wallets,
// order history, swap quoting) so the rest of the system never talks to
// the vendor directly.
package okto
