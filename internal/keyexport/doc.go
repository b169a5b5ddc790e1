// Package keyexport armors room decryption keys for transfer between clients.
//
// An export is a JSON list of room keys encrypted with AES-256-CTR under a
// PBKDF2-SHA512 stretched passphrase, authenticated with HMAC-SHA256 and
// wrapped between MEGOLM SESSION DATA marker lines as unpadded base64. The
// decoder authenticates before it decrypts, so tampered or wrong-passphrase
// input is rejected without touching the ciphertext.
package keyexport
