// Package password hashes the credentials stored on directory records with
// Argon2id.
//
// Hashes use the PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The auth gate never reads these values; they exist so seeded students and
// teachers are stored the way the identity service stores them. Hashes never
// appear in a Principal.
package password
