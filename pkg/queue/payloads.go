package queue

// EbookPayload 条目快照，created / updated 事件使用.
type EbookPayload struct {
	ID         uint    `json:"id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Language   string  `json:"language"`
	Categories string  `json:"categories,omitempty"`
	CoverPath  *string `json:"cover_path,omitempty"`
	PDFPath    string  `json:"pdf_path"`
	// Fields 更新事件中实际变更的字段名.
	Fields []string `json:"fields,omitempty"`
}

// EbookDeletedPayload 条目删除事件.
type EbookDeletedPayload struct {
	ID        uint    `json:"id"`
	CoverPath *string `json:"cover_path,omitempty"`
	PDFPath   string  `json:"pdf_path"`
}

// BlobsSweptPayload 孤儿文件清理结果.
type BlobsSweptPayload struct {
	Scanned int      `json:"scanned"`
	Removed []string `json:"removed,omitempty"`
	Failed  int      `json:"failed,omitempty"`
	DryRun  bool     `json:"dry_run,omitempty"`
}
