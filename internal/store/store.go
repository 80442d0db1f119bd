package store

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spaolacci/murmur3"

	"github.com/veldtlabs/websnap/internal/core/domain"
	"github.com/veldtlabs/websnap/internal/telemetry/logger"
	"github.com/veldtlabs/websnap/internal/telemetry/metric"
	"github.com/veldtlabs/websnap/pkg/cmap"
)

const (
	// fanoutDirs is the number of hashed subdirectories containers are
	// spread across. Must be a power of 2.
	fanoutDirs = 16

	DefaultRetentionCount = 5
	DefaultRetentionDays  = 7
)

// Config configures a Store.
type Config struct {
	Dir string

	// RetentionCount keeps the newest N containers; RetentionDays keeps
	// everything younger than N days. Prune keeps the union. Zero means
	// the default; a negative value disables that dimension.
	RetentionCount int
	RetentionDays  int

	Encryption EncryptionConfig
}

// DefaultConfig returns a store configuration with default retention.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		RetentionCount: DefaultRetentionCount,
		RetentionDays:  DefaultRetentionDays,
	}
}

// Info is one container's metadata.
type Info struct {
	ID        string   `json:"id"`
	CreatedAt int64    `json:"created_at"`
	Exports   []string `json:"exports,omitempty"`
	Encrypted bool     `json:"encrypted"`
	Size      int64    `json:"size"`
	Path      string   `json:"path"`
	Checksum  string   `json:"checksum,omitempty"`
}

// Store persists snapshot containers under one directory tree.
type Store struct {
	cfg   Config
	cache *cmap.Map[string, *Info]

	log     logger.Logger
	metrics *metric.Registry
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithMetrics sets the metrics registry the store reports into.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Store) { s.metrics = m }
}

// New opens (creating if needed) a store rooted at cfg.Dir.
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Dir == "" {
		return nil, domain.ErrStoreInvalidContainer.WithDetails("store dir is required")
	}
	if err := cfg.Encryption.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	if cfg.RetentionCount == 0 {
		cfg.RetentionCount = DefaultRetentionCount
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}

	s := &Store{
		cfg:   cfg,
		cache: cmap.New[string, *Info](),
		log:   logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// shardDir fans container files out across hashed subdirectories.
func (s *Store) shardDir(id string) string {
	return filepath.Join(s.cfg.Dir, fmt.Sprintf("%02x", murmur3.Sum32([]byte(id))%fanoutDirs))
}

func (s *Store) containerPath(id string) string {
	return filepath.Join(s.shardDir(id), id+fileExtension)
}

// Save writes payload as a new container and returns its metadata.
func (s *Store) Save(payload []byte, exports []string) (*Info, error) {
	info, err := s.save(payload, exports)
	s.countOp("save", err)
	return info, err
}

func (s *Store) save(payload []byte, exports []string) (*Info, error) {
	now := time.Now()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()

	hdr := header{
		Version:   headerVersion,
		ID:        id,
		CreatedAt: now.UnixMilli(),
		Exports:   exports,
		Encrypted: s.cfg.Encryption.Enabled(),
	}

	if hdr.Encrypted {
		salt, err := newSalt()
		if err != nil {
			return nil, err
		}
		cipher, err := s.cfg.Encryption.cipherFor(id, salt)
		if err != nil {
			return nil, err
		}
		sealed, err := cipher.Encrypt(payload, []byte(id))
		if err != nil {
			return nil, domain.ErrStoreCipher.WithCause(err)
		}
		payload = sealed
		hdr.Algorithm = string(cipher.Type())
		hdr.Salt = hex.EncodeToString(salt)
	}

	dir := s.shardDir(id)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("store: create shard dir: %w", err)
	}

	tempPath := filepath.Join(dir, id+".tmp")
	file, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("store: create temp file: %w", err)
	}
	defer os.Remove(tempPath)

	sum, err := writeContainer(file, hdr, payload)
	if err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, fmt.Errorf("store: sync: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("store: close: %w", err)
	}

	stat, err := os.Stat(tempPath)
	if err != nil {
		return nil, err
	}
	finalPath := s.containerPath(id)
	if err := os.Rename(tempPath, finalPath); err != nil {
		return nil, fmt.Errorf("store: rename: %w", err)
	}

	info := &Info{
		ID:        id,
		CreatedAt: hdr.CreatedAt,
		Exports:   exports,
		Encrypted: hdr.Encrypted,
		Size:      stat.Size(),
		Path:      finalPath,
		Checksum:  checksumString(sum),
	}
	s.cache.Set(id, info)
	s.refreshGauges()
	s.log.Info("snapshot saved", "id", id, "bytes", info.Size, "encrypted", info.Encrypted)
	return info, nil
}

// Load verifies and returns the decrypted payload of one container.
func (s *Store) Load(id string) ([]byte, *Info, error) {
	payload, info, err := s.load(id)
	s.countOp("load", err)
	return payload, info, err
}

func (s *Store) load(id string) ([]byte, *Info, error) {
	path := s.containerPath(id)
	hdr, payload, sum, err := readContainer(path)
	if err != nil {
		return nil, nil, err
	}

	if hdr.Encrypted {
		if !s.cfg.Encryption.Enabled() {
			return nil, nil, domain.ErrStoreCipher.WithDetails("container is encrypted and no key is configured")
		}
		salt, err := hex.DecodeString(hdr.Salt)
		if err != nil {
			return nil, nil, domain.ErrStoreInvalidContainer.WithDetails(path).WithCause(err)
		}
		cfg := s.cfg.Encryption
		cfg.Algorithm = hdr.Algorithm
		cipher, err := cfg.cipherFor(hdr.ID, salt)
		if err != nil {
			return nil, nil, err
		}
		plain, err := cipher.Decrypt(payload, []byte(hdr.ID))
		if err != nil {
			return nil, nil, domain.ErrStoreCipher.WithDetails(path).WithCause(err)
		}
		payload = plain
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	info := &Info{
		ID:        hdr.ID,
		CreatedAt: hdr.CreatedAt,
		Exports:   hdr.Exports,
		Encrypted: hdr.Encrypted,
		Size:      stat.Size(),
		Path:      path,
		Checksum:  checksumString(sum),
	}
	s.cache.Set(hdr.ID, info)
	return payload, info, nil
}

// Stat returns one container's metadata, from cache when possible.
func (s *Store) Stat(id string) (*Info, error) {
	if info, ok := s.cache.Get(id); ok {
		return info, nil
	}
	hdr, size, err := readHeader(s.containerPath(id))
	if err != nil {
		return nil, err
	}
	info := &Info{
		ID:        hdr.ID,
		CreatedAt: hdr.CreatedAt,
		Exports:   hdr.Exports,
		Encrypted: hdr.Encrypted,
		Size:      size,
		Path:      s.containerPath(id),
	}
	s.cache.Set(id, info)
	return info, nil
}

// List returns all containers sorted by ID; ULIDs sort chronologically.
func (s *Store) List() ([]*Info, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var infos []*Info
	for _, shard := range entries {
		if !shard.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.cfg.Dir, shard.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasSuffix(name, fileExtension) {
				continue
			}
			id := strings.TrimSuffix(name, fileExtension)
			info, err := s.Stat(id)
			if err != nil {
				s.log.Warn("skipping unreadable container", "id", id, "error", err)
				continue
			}
			infos = append(infos, info)
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Latest returns the newest container's metadata.
func (s *Store) Latest() (*Info, error) {
	infos, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, domain.ErrStoreNotFound.WithDetails("store is empty")
	}
	return infos[len(infos)-1], nil
}

// Delete removes one container.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.containerPath(id))
	if os.IsNotExist(err) {
		err = domain.ErrStoreNotFound.WithDetails(id)
	}
	s.countOp("delete", err)
	if err != nil {
		return err
	}
	s.cache.Delete(id)
	s.refreshGauges()
	return nil
}

// Prune applies the retention policy. The newest container always
// survives. It returns the deleted containers.
func (s *Store) Prune() ([]*Info, error) {
	infos, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(infos) <= 1 {
		return nil, nil
	}

	keep := make(map[string]struct{}, len(infos))
	if s.cfg.RetentionCount > 0 {
		start := len(infos) - s.cfg.RetentionCount
		if start < 0 {
			start = 0
		}
		for _, info := range infos[start:] {
			keep[info.ID] = struct{}{}
		}
	}
	if s.cfg.RetentionDays > 0 {
		cutoff := time.Now().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour).UnixMilli()
		for _, info := range infos {
			if info.CreatedAt >= cutoff {
				keep[info.ID] = struct{}{}
			}
		}
	}
	keep[infos[len(infos)-1].ID] = struct{}{}

	var deleted []*Info
	for _, info := range infos {
		if _, ok := keep[info.ID]; ok {
			continue
		}
		if err := os.Remove(info.Path); err != nil {
			s.log.Warn("prune failed", "id", info.ID, "error", err)
			continue
		}
		s.cache.Delete(info.ID)
		deleted = append(deleted, info)
	}
	s.countOp("prune", nil)
	s.refreshGauges()
	if len(deleted) > 0 {
		s.log.Info("pruned snapshots", "deleted", len(deleted), "kept", len(infos)-len(deleted))
	}
	return deleted, nil
}

func (s *Store) countOp(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.StoreOpsTotal.WithLabelValues(op, metric.OutcomeOf(err)).Inc()
}

func (s *Store) refreshGauges() {
	if s.metrics == nil {
		return
	}
	infos, err := s.List()
	if err != nil {
		return
	}
	var bytes int64
	for _, info := range infos {
		bytes += info.Size
	}
	s.metrics.StoreSnapshots.Set(float64(len(infos)))
	s.metrics.StoreBytes.Set(float64(bytes))
}
