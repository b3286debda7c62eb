package ports

// Normalizer defines the interface for text normalization applied to both
// texts before alignment. Non-identity normalizers change the frame of
// reference of all reported offsets to the normalized text.
type Normalizer interface {
	Normalize(text string) string
}
