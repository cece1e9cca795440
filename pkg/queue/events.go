package queue

import "github.com/ThreeDotsLabs/watermill/message"

// Publish 构造信封并发布到 topic.
func Publish[T any](pub message.Publisher, topic string, payload T, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}

// PublishEbookCreated 发布 eb.ebook.created 事件.
func PublishEbookCreated(pub message.Publisher, payload EbookPayload, opts ...func(*EventHeader)) error {
	return Publish(pub, TopicEbookCreated, payload, opts...)
}

// PublishEbookUpdated 发布 eb.ebook.updated 事件.
func PublishEbookUpdated(pub message.Publisher, payload EbookPayload, opts ...func(*EventHeader)) error {
	return Publish(pub, TopicEbookUpdated, payload, opts...)
}

// PublishEbookDeleted 发布 eb.ebook.deleted 事件.
func PublishEbookDeleted(pub message.Publisher, payload EbookDeletedPayload, opts ...func(*EventHeader)) error {
	return Publish(pub, TopicEbookDeleted, payload, opts...)
}

// PublishBlobsSwept 发布 eb.blob.swept 事件.
func PublishBlobsSwept(pub message.Publisher, payload BlobsSweptPayload, opts ...func(*EventHeader)) error {
	return Publish(pub, TopicBlobsSwept, payload, opts...)
}
