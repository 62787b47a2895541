package address

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mwantia/vfile/backend"
	"github.com/mwantia/vfile/backend/afero"
	"github.com/mwantia/vfile/backend/billy"
	"github.com/mwantia/vfile/backend/consul"
	"github.com/mwantia/vfile/backend/local"
	"github.com/mwantia/vfile/backend/memory"
	"github.com/mwantia/vfile/backend/postgres"
	"github.com/mwantia/vfile/backend/s3"
	"github.com/mwantia/vfile/backend/sqlite"
	spfafero "github.com/spf13/afero"
)

var (
	ErrMalformedAddress = errors.New("malformed backend address defined")
	ErrUnknownProtocol  = errors.New("unknown backend protocol address")
)

// Open parses address and opens the resulting backend.
func Open(ctx context.Context, address string) (backend.Filesystem, error) {
	fsys, err := Parse(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := fsys.Open(ctx); err != nil {
		fsys.Close(ctx)
		return nil, fmt.Errorf("failed to open backend '%s': %w", fsys.Name(), err)
	}

	return fsys, nil
}

// Parse builds a backend from address without opening it. Supported forms:
//
//	local://[root]
//	memory://  or  :memory:
//	sqlite://<path>  (sqlite://:memory: for a throwaway database)
//	postgres://<user>:<pass>@<host>:<port>/<db>  (also postgresql://, psql://)
//	s3://<access_key>:<secret_key>@<host>:<port>/<bucket>?ssl=true  (also minio://)
//	consul://<host>:<port>/<prefix>?token=<token>&dc=<datacenter>
//	billy://[root]  (memfs when root is empty)
//	afero://[root]  (MemMapFs when root is empty)
func Parse(ctx context.Context, address string) (backend.Filesystem, error) {
	address = strings.TrimSpace(address)
	if !strings.Contains(address, ":") {
		return nil, fmt.Errorf("failed to parse address '%s': %w", address, ErrMalformedAddress)
	}

	if address == ":memory:" {
		return memory.NewMemoryBackend(), nil
	}

	scheme, rest, _ := strings.Cut(address, "://")
	switch scheme {
	case "local":
		if rest == "" {
			return local.NewLocalBackend(), nil
		}
		return local.NewLocalBackendAt(rest), nil
	case "memory":
		return memory.NewMemoryBackend(), nil
	case "sqlite":
		if rest == "" {
			return nil, fmt.Errorf("failed to parse address '%s': missing database path: %w", address, ErrMalformedAddress)
		}
		return filesystem(sqlite.NewSQLiteBackend(rest))
	case "postgres", "postgresql", "psql":
		return filesystem(postgres.NewPostgresBackend(ctx, "postgres://"+rest))
	case "s3", "minio":
		return parseS3Address(address)
	case "consul":
		return parseConsulAddress(address)
	case "billy":
		if rest == "" {
			return billy.NewMemoryBillyBackend(), nil
		}
		return billy.NewOSBillyBackend(rest), nil
	case "afero":
		if rest == "" {
			return afero.NewMemoryAferoBackend(), nil
		}
		return afero.NewAferoBackend(spfafero.NewBasePathFs(spfafero.NewOsFs(), rest)), nil
	}

	return nil, fmt.Errorf("failed to parse address '%s': %w", address, ErrUnknownProtocol)
}

func parseS3Address(address string) (backend.Filesystem, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse address: %v: %w", err, ErrMalformedAddress)
	}

	bucket := strings.Trim(u.Path, "/")
	if u.Host == "" || bucket == "" {
		return nil, fmt.Errorf("failed to parse address '%s': expected host and bucket: %w", u.Redacted(), ErrMalformedAddress)
	}

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	useSsl := false
	if v := u.Query().Get("ssl"); v != "" {
		useSsl, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse address '%s': invalid ssl value '%s': %w", u.Redacted(), v, ErrMalformedAddress)
		}
	}

	return filesystem(s3.NewS3Backend(u.Host, bucket, accessKey, secretKey, useSsl))
}

func parseConsulAddress(address string) (backend.Filesystem, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse address: %v: %w", err, ErrMalformedAddress)
	}

	query := u.Query()
	return filesystem(consul.NewConsulBackend(&consul.ConsulBackendConfig{
		Address:    u.Host,
		Token:      query.Get("token"),
		Datacenter: query.Get("dc"),
		Prefix:     strings.Trim(u.Path, "/"),
	}))
}

// filesystem drops the typed nil a failed constructor returns.
func filesystem[T backend.Filesystem](fsys T, err error) (backend.Filesystem, error) {
	if err != nil {
		return nil, err
	}

	return fsys, nil
}
