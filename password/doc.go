// Package password hashes new passwords with argon2id and verifies stored hashes.
//
// New hashes use the PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Accounts created before the switch to argon2id carry bcrypt hashes (cost 10).
// [Hasher] verifies those when legacy support is enabled and reports that they
// need rehashing, as it does for argon2id hashes made with weaker parameters.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other goGate package.
//   - Log plaintext passwords.
package password
