package circulation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FulfillmentContent is the payload of a fulfillment: either a link or
// inline bytes.
type FulfillmentContent struct {
	ContentLink    string
	ContentType    string
	Content        []byte
	ContentExpires *time.Time
}

// ContentFetcher retrieves fulfillment content from a vendor on demand.
type ContentFetcher func(ctx context.Context) (FulfillmentContent, error)

// FulfillmentInfo is a way to get a title's bytes. When built with a fetcher
// the content is retrieved once, on first access.
type FulfillmentInfo struct {
	CollectionID   uuid.UUID
	DataSourceName string
	Identifier     Identifier

	content FulfillmentContent
	fetch   ContentFetcher
	once    sync.Once
	err     error
}

func NewFulfillmentInfo(pool *LicensePool, content FulfillmentContent) *FulfillmentInfo {
	return &FulfillmentInfo{
		CollectionID:   pool.CollectionID(),
		DataSourceName: pool.DataSourceName(),
		Identifier:     pool.Identifier(),
		content:        content,
	}
}

func NewDeferredFulfillmentInfo(pool *LicensePool, contentType string, fetch ContentFetcher) *FulfillmentInfo {
	return &FulfillmentInfo{
		CollectionID:   pool.CollectionID(),
		DataSourceName: pool.DataSourceName(),
		Identifier:     pool.Identifier(),
		content:        FulfillmentContent{ContentType: contentType},
		fetch:          fetch,
	}
}

func (f *FulfillmentInfo) IsDeferred() bool {
	return f.fetch != nil
}

// Resolve returns the fulfillment content, fetching it first if deferred.
func (f *FulfillmentInfo) Resolve(ctx context.Context) (FulfillmentContent, error) {
	if f.fetch == nil {
		return f.content, nil
	}
	f.once.Do(func() {
		c, err := f.fetch(ctx)
		if err != nil {
			f.err = err
			return
		}
		if c.ContentType == "" {
			c.ContentType = f.content.ContentType
		}
		f.content = c
	})
	return f.content, f.err
}

// ContentType is known without resolving.
func (f *FulfillmentInfo) ContentType() string {
	return f.content.ContentType
}

// IsEmpty reports whether a non-deferred fulfillment carries nothing usable.
func (f *FulfillmentInfo) IsEmpty() bool {
	if f == nil {
		return true
	}
	if f.fetch != nil {
		return false
	}
	return f.content.ContentLink == "" && len(f.content.Content) == 0
}

// WithLink replaces the content link, used when signing URLs.
func (f *FulfillmentInfo) WithLink(link string) {
	f.content.ContentLink = link
}
