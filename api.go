package driftcore

// Normalize returns the canonical JSON form of text.
func Normalize(text string) (string, error) {
	doc, err := Parse(text)
	if err != nil {
		return "", err
	}
	return doc.Normalize()
}

// Hash returns the SHA-256 hex digest of the canonical form of text.
func Hash(text string) (string, error) {
	doc, err := Parse(text)
	if err != nil {
		return "", err
	}
	return doc.Hash()
}

// NormalizeAndHash parses text once and returns both the canonical form and
// its digest. The results equal those of Normalize and Hash.
func NormalizeAndHash(text string) (normalized, hash string, err error) {
	doc, err := Parse(text)
	if err != nil {
		return "", "", err
	}
	return doc.NormalizeAndHash()
}

// EncodeStruct returns the deterministic protobuf Struct encoding of text.
func EncodeStruct(text string) ([]byte, error) {
	doc, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return doc.EncodeStruct()
}

// StructFieldCount returns the number of top-level members of an object.
// Non-object roots fail with a KindType error.
func StructFieldCount(text string) (int, error) {
	doc, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return doc.FieldCount()
}
