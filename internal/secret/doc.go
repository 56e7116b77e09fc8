// Package secret resolves the ServiceNow Basic account from inline values,
// an encrypted scy resource or the OS keyring, and stores accounts in the
// keyring for later use.
package secret
