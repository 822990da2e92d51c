package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tagdb/internal/config"
	"tagdb/internal/encryption"
	"tagdb/internal/fs"
	"tagdb/internal/store"
	"tagdb/internal/tag"
	"tagdb/internal/tagdb"
)

// PassphraseFunc supplies the passphrase that unlocks the private key. It is
// only called when the configured store seals its data.
type PassphraseFunc func() (string, error)

// TagApp is the application layer between the CLI and the tagdb Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw strings, and saves the database on Close.
type TagApp struct {
	cfg     *config.Config
	store   tagdb.Store
	fsmgr   tagdb.FilesystemManager
	service *tagdb.Service
	logger  *slog.Logger
	op      *Operation
	logFile *os.File
}

// NewTagApp creates a fully wired TagApp and loads the configured database.
// op identifies the CLI command being run. The caller must call Close when
// done.
func NewTagApp(cfg *config.Config, op *Operation, passphrase PassphraseFunc) (*TagApp, error) {
	a, err := wire(cfg, op, passphrase, true)
	if err != nil {
		return nil, err
	}

	svc, err := tagdb.OpenService(a.store, cfg.Database.Location, a.fsmgr, &slogAdapter{l: a.logger})
	if err != nil {
		a.logFile.Close()
		if errors.Is(err, tagdb.ErrNotFound) {
			return nil, fmt.Errorf("%w (run 'tagdb init' first)", err)
		}
		return nil, err
	}
	a.service = svc
	return a, nil
}

// InitTagApp creates and saves an empty database at the configured location.
// It fails when a database is already stored there.
func InitTagApp(cfg *config.Config, op *Operation) (*TagApp, error) {
	a, err := wire(cfg, op, nil, false)
	if err != nil {
		return nil, err
	}

	location := cfg.Database.Location
	_, err = a.store.Load(location)
	switch {
	case err == nil:
		a.logFile.Close()
		return nil, fmt.Errorf("database already exists at %s", location)
	case !errors.Is(err, tagdb.ErrNotFound):
		a.logFile.Close()
		return nil, fmt.Errorf("checking for existing database: %w", err)
	}

	a.service = tagdb.NewService(tagdb.New(location), a.store, a.fsmgr, &slogAdapter{l: a.logger})
	if err := a.service.Save(); err != nil {
		a.logFile.Close()
		return nil, err
	}
	return a, nil
}

// wire builds the store, filesystem manager and logger. When decrypt is
// true and the config enables encryption, the private key is unlocked with
// the passphrase so the store can read sealed data.
func wire(cfg *config.Config, op *Operation, passphrase PassphraseFunc, decrypt bool) (*TagApp, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	var dec tagdb.DecryptionContext
	if enc != nil {
		if !enc.IsConfigured() {
			return nil, fmt.Errorf("encryption keys not found (run 'tagdb keys setup' first)")
		}
		if decrypt {
			if passphrase == nil {
				return nil, fmt.Errorf("a passphrase is required to read the encrypted database")
			}
			p, err := passphrase()
			if err != nil {
				return nil, fmt.Errorf("reading passphrase: %w", err)
			}
			dec, err = enc.Unlock(p)
			if err != nil {
				return nil, fmt.Errorf("unlocking private key: %w", err)
			}
		}
	}

	st, err := store.NewStoreFromConfig(cfg.Store, enc, dec)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	logger, logFile, err := newLogger(cfg.LogDir, op.ID, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger.Debug("operation started", "operation", op.Name, "parameters", op.Parameters, "store", cfg.Store.Type)

	return &TagApp{
		cfg:     cfg,
		store:   st,
		fsmgr:   fs.NewOSFilesystemManager(cfg.Filesystem.Ignore),
		logger:  logger,
		op:      op,
		logFile: logFile,
	}, nil
}

// SetupKeys generates the configured key pair, sealing the private key with
// passphrase.
func SetupKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return fmt.Errorf("encryption is disabled in the configuration")
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up keys: %w", err)
	}
	return nil
}

// fail records err on the operation and returns it.
func (a *TagApp) fail(err error) error {
	a.op.Fail(err)
	return err
}

// AddFiles resolves the given path and registers file(s) in the database.
// Returns the number of newly registered files.
func (a *TagApp) AddFiles(rawPath string, recursive bool) (int, error) {
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return 0, a.fail(fmt.Errorf("resolving path: %w", err))
	}
	n, err := a.service.AddFiles(p, recursive)
	if err != nil {
		return n, a.fail(err)
	}
	return n, nil
}

// Tag parses tagText and attaches it to a registered file. The path may no
// longer exist on disk; resolution uses filepath.Abs only.
func (a *TagApp) Tag(rawPath, tagText string) error {
	t, err := parseTag(tagText)
	if err != nil {
		return a.fail(err)
	}
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return a.fail(fmt.Errorf("resolving path: %w", err))
	}
	if !a.service.AddTagToFile(absPath, t) {
		return a.fail(fmt.Errorf("file is not registered: %s", absPath))
	}
	return nil
}

// TagMatching attaches tagText to every file matching queryText and returns
// the number of matching files.
func (a *TagApp) TagMatching(queryText, tagText string) (int, error) {
	q, err := tag.ParseQuery(queryText)
	if err != nil {
		return 0, a.fail(err)
	}
	t, err := parseTag(tagText)
	if err != nil {
		return 0, a.fail(err)
	}
	return a.service.AddTagMatching(q, t), nil
}

// Query returns the paths of files matching queryText.
func (a *TagApp) Query(queryText string) ([]string, error) {
	q, err := tag.ParseQuery(queryText)
	if err != nil {
		return nil, a.fail(err)
	}
	return a.service.Query(q), nil
}

// Remove deletes the file entries matching queryText.
func (a *TagApp) Remove(queryText string) (int, error) {
	q, err := tag.ParseQuery(queryText)
	if err != nil {
		return 0, a.fail(err)
	}
	return a.service.RemoveMatching(q), nil
}

// Untag removes the tags matching queryText. When rawPath is empty the tags
// are removed from every file, otherwise from that file only.
func (a *TagApp) Untag(queryText, rawPath string) (int, error) {
	q, err := tag.ParseQuery(queryText)
	if err != nil {
		return 0, a.fail(err)
	}
	if rawPath == "" {
		return a.service.RemoveMatchingTags(q), nil
	}
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return 0, a.fail(fmt.Errorf("resolving path: %w", err))
	}
	if _, ok := a.service.Database().File(absPath); !ok {
		return 0, a.fail(fmt.Errorf("file is not registered: %s", absPath))
	}
	return a.service.RemoveMatchingTagsForFile(absPath, q), nil
}

// List returns every registered file ordered by path.
func (a *TagApp) List() []*tagdb.TaggedFile {
	return a.service.Database().Files()
}

// Status returns the registration status of files under the given directory.
func (a *TagApp) Status(rawPath string, recursive bool) ([]*tagdb.FileStatus, error) {
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, a.fail(fmt.Errorf("resolving path: %w", err))
	}
	statuses, err := a.service.Status(p, recursive)
	if err != nil {
		return nil, a.fail(err)
	}
	return statuses, nil
}

// Close finalizes the operation. A mutating operation that succeeded and
// changed the database saves it; everything else leaves storage untouched.
func (a *TagApp) Close() error {
	var firstErr error

	if a.op.Mutating && a.op.Succeeded() && a.service != nil && a.service.Modified() {
		if err := a.service.Save(); err != nil {
			a.op.Fail(err)
			firstErr = err
		}
	}

	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"duration", time.Since(a.op.StartedAt).Truncate(time.Millisecond).String(),
	)

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

func parseTag(text string) (tag.Tag, error) {
	t := tag.FromText(text)
	if t.IsNil() {
		return t, fmt.Errorf("empty tag")
	}
	return t, nil
}
