package redis

const (
	// KeyPrefixNote is the prefix for note documents
	KeyPrefixNote = "cloudnotes:note:"
	// KeyPrefixOwner is the prefix for per-owner indexes
	KeyPrefixOwner = "cloudnotes:owner:"
)

// NoteKey returns the Redis key holding a note's JSON document
func NoteKey(id string) string {
	return KeyPrefixNote + id
}

// OwnerNotesKey returns the key of the set of note IDs owned by owner
func OwnerNotesKey(owner string) string {
	return KeyPrefixOwner + owner + ":notes"
}
