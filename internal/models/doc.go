// Package models defines the core domain models for the Sarvam backend.
//
// # Models
//
//   - User: a registered account (password or Google sign-in), carrying the
//     back-reference set of expense groups it participates in
//   - ExpenseGroup: an expense-splitting group with its embedded member list
//     and expense lines
//   - Post: an image-bearing social post with likes
//   - PasswordReset: the OTP record backing the password-reset flow
//
// # Design Principles
//
//  1. **Avoid circular references**: relationships use ID strings, never
//     pointers between models
//  2. **Canonical phones**: every phone number stored anywhere in a group
//     aggregate is normalized to the same digit-only suffix form before
//     persistence
//  3. **Append-only expense lines**: a group's expenses only grow or are
//     removed wholesale with the group
//
// The package also defines the error taxonomy shared by the storage, service,
// and handler layers (see errors.go).
package models
