//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
//go:generate mockgen -package mocks -destination mocks/sdk_s3api.go github.com/aws/aws-sdk-go/service/s3/s3iface S3API
package s3

import (
	"errors"
	"io"
)

var ErrKeyNotFound = errors.New("key not found")

type BasicClient interface {
	Lister
	Getter
	Putter
	BufferPutter
	Deleter
}

type Client interface {
	BasicClient
	Mover
}

type Lister interface {
	List(key string) (keys []string, err error)
}

type Getter interface {
	// Get returns ErrKeyNotFound if the given key doesn't exist.
	Get(key string) (data []byte, err error)
	// Exists reports whether the given key is present without fetching its body.
	Exists(key string) (bool, error)
}

// Putter writes a whole object in one call. A put either lands the complete
// object or nothing - retried invocations overwrite rather than append.
type Putter interface {
	Put(key string, data []byte, contentType string) (err error)
}

// BufferPutter can be used to put a file to S3 since File implements Read and Seek.
type BufferPutter interface {
	BufferPut(key string, buf io.ReadSeeker, contentType string) (err error)
}

type Deleter interface {
	Delete(key string) error
}

type Mover interface {
	// Move returns ErrKeyNotFound if the src key doesn't exist.
	Move(src, dst string) error
}
