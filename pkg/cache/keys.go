package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// optsDigestLen is the number of hex characters of the options digest kept
// in a key. The problem hash stays whole.
const optsDigestLen = 16

// Keyer derives cache keys.
type Keyer interface {
	// SolveKey identifies the result of solving the problem with the given
	// content hash.
	SolveKey(problemHash string, opts SolveKeyOpts) string

	// ArtifactKey identifies a rendered search tree.
	ArtifactKey(problemHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds keys of the form "<kind>:<problem hash>:<options
// digest>", so every entry of one instance shares a prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) SolveKey(problemHash string, opts SolveKeyOpts) string {
	return problemKey("solve", problemHash, opts)
}

func (DefaultKeyer) ArtifactKey(problemHash string, opts ArtifactKeyOpts) string {
	return problemKey("artifact", problemHash, opts)
}

func problemKey(kind, problemHash string, opts any) string {
	// Key options are flat structs of strings and numbers.
	data, _ := json.Marshal(opts)
	return kind + ":" + problemHash + ":" + Hash(data)[:optsDigestLen]
}

// Hash returns the hex SHA-256 of data. Problems are identified by the
// hash of their canonical encoding; FileCache also names its files by the
// hash of the key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
