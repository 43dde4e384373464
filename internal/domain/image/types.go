package image

// UploadedImage is a user-selected file that passed validation and is
// pending encoding. The raw bytes are owned by the pipeline until encoding
// completes.
type UploadedImage struct {
	Name   string
	Raw    []byte
	MIME   string
	Format string
	Size   int64
	Width  int
	Height int
}

// EncodedPayload is the base64 transport form of a validated, possibly
// downscaled image. Derived from exactly one UploadedImage and never
// persisted beyond the request that consumes it.
type EncodedPayload struct {
	Base64 string
	Format string
	Width  int
	Height int
}

// ValidationResult captures the outcome of validating an upload.
type ValidationResult struct {
	IsValid  bool
	Format   string
	Width    int
	Height   int
	FileSize int64
	Error    error
}
