package config

const (
	// MaxProjectTitleLength is the maximum length for project titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxProjectTitleLength = 255

	// MaxChapterTitleLength is the maximum length for chapter titles.
	// Same bound as project titles for consistency.
	MaxChapterTitleLength = 255

	// MaxTemplateNameLength is the maximum length for template names.
	MaxTemplateNameLength = 255

	// MaxImportFileSize is the upload size cap for chapter imports, in
	// bytes. A full novel manuscript in markdown runs well under 1 MB.
	MaxImportFileSize = 1 << 20

	// MaxPromptLength bounds generation prompts. Long prompts belong in
	// chapter context, not the instruction.
	MaxPromptLength = 4000
)
