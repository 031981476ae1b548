// Package snapshot provides snapshot management for Dew.
//
// A snapshot is a full dump of the in-memory todo store written to a single
// file. The file is indented JSON so it can be diffed and inspected by hand:
//
//	{
//	  "version": 1,
//	  "saved_at": "2024-03-01T12:30:00Z",
//	  "count": 1,
//	  "payload": {
//	    "<id>": {"id": "<id>", "title": "...", "status": "Active", "created": "..."}
//	  }
//	}
//
// The version field discriminates layouts. Load refuses unknown versions
// rather than guessing. When encryption is configured, "payload" is null and
// the JSON-encoded payload is stored sealed in "sealed" (base64), together
// with the cipher name and, for passphrase keys, the Argon2id salt.
//
// Writes go to a temp file in the same directory, are fsynced, and then
// renamed over the target, so a crash mid-write leaves the previous
// snapshot intact.
package snapshot
