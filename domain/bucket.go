package domain

import "fmt"

// Category is the quadrant classification of a task. It drives the color
// chip in the UI and is independent of the containing bucket only while the
// task sits in the Today bucket.
type Category string

const (
	CategoryUrgentImportant       Category = "UrgentImportant"
	CategoryUrgentNotImportant    Category = "UrgentNotImportant"
	CategoryNotUrgentImportant    Category = "NotUrgentImportant"
	CategoryNotUrgentNotImportant Category = "NotUrgentNotImportant"
)

// Bucket is the column a task currently resides in: the four quadrants plus
// the cross-cutting Today column.
type Bucket string

const (
	BucketUrgentImportant       Bucket = "UrgentImportant"
	BucketUrgentNotImportant    Bucket = "UrgentNotImportant"
	BucketNotUrgentImportant    Bucket = "NotUrgentImportant"
	BucketNotUrgentNotImportant Bucket = "NotUrgentNotImportant"
	BucketToday                 Bucket = "Today"
)

// Buckets returns every bucket in board render order.
func Buckets() []Bucket {
	return []Bucket{
		BucketUrgentImportant,
		BucketUrgentNotImportant,
		BucketToday,
		BucketNotUrgentImportant,
		BucketNotUrgentNotImportant,
	}
}

// InvalidBucketError reports a bucket token that matches none of the five
// recognized names.
type InvalidBucketError struct {
	Token string
}

func (e InvalidBucketError) Error() string {
	return fmt.Sprintf("invalid bucket %q", e.Token)
}

// ParseBucket maps an external token to a Bucket. Unrecognized tokens are
// rejected, never defaulted; ParseBucket is the only string boundary for
// bucket values.
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case BucketUrgentImportant, BucketUrgentNotImportant,
		BucketNotUrgentImportant, BucketNotUrgentNotImportant, BucketToday:
		return Bucket(s), nil
	}
	return "", InvalidBucketError{Token: s}
}

// CategoryForBucket returns the category a quadrant bucket implies. For
// Today there is no implied category and ok is false; the caller must
// supply or preserve one.
func CategoryForBucket(b Bucket) (Category, bool) {
	switch b {
	case BucketUrgentImportant:
		return CategoryUrgentImportant, true
	case BucketUrgentNotImportant:
		return CategoryUrgentNotImportant, true
	case BucketNotUrgentImportant:
		return CategoryNotUrgentImportant, true
	case BucketNotUrgentNotImportant:
		return CategoryNotUrgentNotImportant, true
	}
	return "", false
}
