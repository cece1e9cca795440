package queue

// 主题命名规范：eb.<域>.<动作>，尽量稳定且向后兼容.

const (
	// 目录条目领域.
	TopicEbookCreated = "eb.ebook.created" // 新条目已入库（封面与 PDF 均已上传）
	TopicEbookUpdated = "eb.ebook.updated" // 条目字段或文件被替换
	TopicEbookDeleted = "eb.ebook.deleted" // 条目及其文件已删除

	// 文件存储领域.
	TopicBlobsSwept = "eb.blob.swept" // 孤儿文件清理完成
)

// AllTopics 返回所有已定义主题，供 CLI 列出.
func AllTopics() []string {
	return []string{TopicEbookCreated, TopicEbookUpdated, TopicEbookDeleted, TopicBlobsSwept}
}
