// Package importer loads tags and synonyms from plain-text files.
//
// Every non-empty line of a tag file is a whitespace separated list of words.
// The first word names a tag; every word, the first included, becomes a
// synonym of that tag unless the synonym already belongs to another tag.
package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"tagging/internal/shared/config"
	"tagging/internal/tagevents"
	"tagging/internal/tags"
	"tagging/pkg/cache"
	"tagging/pkg/logger"
)

const maxLineLength = 1 << 20

// Options mirrors the importtags command line
type Options struct {
	// Database is the alias the import was requested for; used in reports
	Database string `validate:"required"`

	// Transactions wraps the whole run in one transaction
	Transactions bool

	// Commit makes the importer own its transaction. When false the importer
	// runs on the handle it was given and leaves commit and rollback to the caller.
	Commit bool

	Verbosity int `validate:"gte=0,lte=3"`
	Traceback bool

	Stdout io.Writer
	Stderr io.Writer
}

// DefaultOptions are the command line defaults
func DefaultOptions() Options {
	return Options{
		Database:     config.DefaultDatabaseAlias,
		Transactions: true,
		Commit:       true,
		Verbosity:    1,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

// Result summarises an import run
type Result struct {
	Files     int
	Tags      int
	Synonyms  int
	Committed bool
}

type Importer struct {
	db        *gorm.DB
	opts      Options
	cache     cache.Service
	publisher tagevents.Publisher
	log       *logger.Logger
	validate  *validator.Validate
}

// New creates an importer over db. With Options.Commit false, db should be the
// caller's transaction handle.
func New(db *gorm.DB, opts Options, cacheService cache.Service, publisher tagevents.Publisher, log *logger.Logger) *Importer {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Importer{
		db:        db,
		opts:      opts,
		cache:     cacheService,
		publisher: publisher,
		log:       log,
		validate:  validator.New(),
	}
}

func (i *Importer) printf(minVerbosity int, format string, args ...interface{}) {
	if i.opts.Verbosity >= minVerbosity {
		fmt.Fprintf(i.opts.Stdout, format+"\n", args...)
	}
}

// Run imports every file in order. The first error aborts the run; in
// transactional mode nothing of the run is kept. Every error except an
// interrupt has already been written to Options.Stderr when Run returns.
func (i *Importer) Run(ctx context.Context, files []string) (*Result, error) {
	if err := i.validate.Struct(i.opts); err != nil {
		return nil, i.report(ctx, fmt.Errorf("invalid import options: %w", err))
	}
	if len(files) == 0 {
		return nil, i.report(ctx, ErrNoFiles)
	}

	ownTransaction := i.opts.Transactions && i.opts.Commit

	db := i.db.WithContext(ctx)
	if ownTransaction {
		i.printf(1, "Entering transaction")
		db = db.Begin()
		if db.Error != nil {
			return nil, i.report(ctx, fmt.Errorf("failed to begin transaction: %w", db.Error))
		}
	}

	result := &Result{Files: len(files)}
	repo := tags.NewRepository(db)

	for _, path := range files {
		if err := i.importFile(ctx, repo, path, result); err != nil {
			if ownTransaction {
				db.Rollback()
			}
			return nil, i.report(ctx, err)
		}
	}

	if ownTransaction {
		i.printf(1, "Committing transaction")
		if err := commit(ctx, db); err != nil {
			return nil, i.report(ctx, err)
		}
	}
	result.Committed = i.opts.Commit

	if result.Tags == 0 {
		i.printf(2, "No tags found.")
	} else {
		i.printf(1, "Installed %d tags and %d synonyms from %d file(s)", result.Tags, result.Synonyms, result.Files)
	}

	if result.Committed {
		i.afterCommit(ctx, files, result)
	}
	i.log.LogImportFinished(ctx, i.opts.Database, result.Files, result.Tags, result.Synonyms, result.Committed)

	return result, nil
}

// commit ends the run's transaction. An interrupt that lands after the last
// line is still reported as an interrupt, even when the driver has already
// rolled the transaction back.
func commit(ctx context.Context, tx *gorm.DB) error {
	if err := ctx.Err(); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("failed to commit transaction: %w: %w", ctxErr, err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (i *Importer) importFile(ctx context.Context, repo tags.Repository, path string, result *Result) error {
	i.printf(1, "Importing tags and synonyms from %s.", path)
	i.printf(1, "Using transactions: %t", i.opts.Transactions)

	file, err := os.Open(path)
	if err != nil {
		return &ImportError{Path: path, Err: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	tagsInFile := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		if !utf8.ValidString(line) {
			return &ImportError{Path: path, Line: lineNo, Tag: strings.ToValidUTF8(words[0], "?"), Err: ErrInvalidEncoding}
		}

		i.printf(1, "Importing tag %q with synonyms %s.", words[0], quoteAll(words[1:]))
		result.Tags++
		result.Synonyms += len(words)
		tagsInFile++

		if err := importLine(ctx, repo, words); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return &ImportError{Path: path, Line: lineNo, Tag: words[0], Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return &ImportError{Path: path, Line: lineNo + 1, Err: err}
	}

	if tagsInFile == 0 {
		return &ImportError{Path: path, Err: ErrNoTagsInFile}
	}
	return nil
}

// importLine get-or-creates the tag named by the first word and claims every
// word as a synonym for it; a synonym already owned elsewhere is left alone.
func importLine(ctx context.Context, repo tags.Repository, words []string) error {
	tag, _, err := repo.GetOrCreateTag(ctx, words[0])
	if err != nil {
		return err
	}
	for _, word := range words {
		if _, _, err := repo.GetOrCreateSynonym(ctx, word, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

// report writes the diagnostic for err and returns it. Interrupts are returned
// untouched so callers can tell them apart.
func (i *Importer) report(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	fmt.Fprintln(i.opts.Stderr, err.Error())
	if i.opts.Traceback {
		writeChain(i.opts.Stderr, err)
	}

	i.log.WarnContext(ctx, "Tag import aborted",
		"database", i.opts.Database,
		"error", err.Error(),
	)
	return err
}

func (i *Importer) afterCommit(ctx context.Context, files []string, result *Result) {
	if err := tags.InvalidateTagCache(ctx, i.cache); err != nil {
		i.log.WarnContext(ctx, "Failed to invalidate tag cache", "error", err.Error())
	}

	tagevents.PublishPayload(ctx, i.publisher, i.log, tagevents.EventTypeTagsImported, tagevents.TagsImportedPayload{
		Database:     i.opts.Database,
		Files:        files,
		TagCount:     result.Tags,
		SynonymCount: result.Synonyms,
	})
}

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for n, w := range words {
		quoted[n] = fmt.Sprintf("%q", w)
	}
	return strings.Join(quoted, ", ")
}

// writeChain prints every wrapped error, outermost first
func writeChain(w io.Writer, err error) {
	fmt.Fprintln(w, "Error chain (most recent last):")
	depth := 0
	for err != nil {
		fmt.Fprintf(w, "%s%T: %v\n", strings.Repeat("  ", depth+1), err, err)
		err = errors.Unwrap(err)
		depth++
	}
}
