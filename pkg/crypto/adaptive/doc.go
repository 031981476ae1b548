// Package adaptive provides AEAD ciphers for sealing Dew snapshots.
//
// Two algorithms are supported:
//
//   - AES-256-GCM, preferred where the CPU has AES instructions
//   - ChaCha20-Poly1305, used elsewhere
//
// "auto" (or the empty string) picks one for the current architecture. The
// chosen type is reported by Cipher.Type so it can be stored next to the
// ciphertext and the same algorithm used to open it later, on any machine.
//
// Ciphertexts are laid out as nonce || sealed data || tag. A fresh random
// nonce is drawn for every call to Encrypt.
//
// Usage:
//
//	c, err := adaptive.NewWithType(key, adaptive.CipherAuto)
//	sealed, err := c.Encrypt(plaintext, aad)
//	plaintext, err := c.Decrypt(sealed, aad)
package adaptive
