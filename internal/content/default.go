package content

import _ "embed"

//go:embed default.yaml
var defaultYAML []byte

// Default returns the embedded default portfolio snapshot.
func Default() *Snapshot {
	snap, err := Parse(defaultYAML)
	if err != nil {
		// The embedded document is validated by tests; a decode failure
		// here is a build defect.
		panic(err)
	}
	return snap
}
