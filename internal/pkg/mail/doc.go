// Package mail defines the contract for delivering email messages.
//
// The gate only ever sends short transactional messages (one-time codes), so
// the surface is deliberately small: a Message payload and a Mail interface.
// The concrete transport (SMTP today) lives in this package too, keeping the
// rest of the application independent from the provider.
package mail
