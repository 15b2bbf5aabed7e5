package config

const (
	// MaxDocumentNameLength bounds document names. DSpace stores dc.title
	// as text but the local column is VARCHAR(255).
	MaxDocumentNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	MaxFolderNameLength = 255

	// MaxDescriptionLength bounds descriptions mirrored into dc.description.
	MaxDescriptionLength = 10000

	// MaxDocumentTypeLength bounds dc.type values.
	MaxDocumentTypeLength = 100

	// MaxFilenameLength bounds staged bitstream file names.
	MaxFilenameLength = 255

	// MaxDSpaceNameLength bounds community and collection names.
	MaxDSpaceNameLength = 255
)
