package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/content"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/bunx"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/mutation"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/revalidate"
)

var contentFileFlag string

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Read and write site content sections",
	Long:  `Commands for inspecting and seeding content sections without the console.`,
}

var contentGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a section as JSON, with defaults when nothing is stored",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := bunx.NewDB(ctx, cfg.DatabaseURL, 1)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		store := content.NewStore(repository.NewBunContentRepository(db), nil)
		doc, found, err := store.Read(ctx, args[0])
		if err != nil {
			return err
		}
		if !found && !content.Known(args[0]) {
			return fmt.Errorf("section %q not found", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(content.Decode(args[0], doc))
	},
}

var contentSetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Replace a section with a JSON document",
	Long: `Validates and stores a whole section document read from --file (or stdin
with --file -), then invalidates the cached public paths that read it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(contentFileFlag)
		if err != nil {
			return err
		}
		var doc content.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("invalid JSON document: %w", err)
		}

		ctx := context.Background()
		db, err := bunx.NewDB(ctx, cfg.DatabaseURL, 1)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		validator, err := content.NewSchemaValidator(0)
		if err != nil {
			return fmt.Errorf("failed to load section schemas: %w", err)
		}
		pageCache, closeCache, err := openPageCache(ctx, cfg.Cache, repository.NewBunRenderCacheRepository(db))
		if err != nil {
			return err
		}
		defer closeCache()

		pipeline := mutation.NewPipeline(
			content.NewStore(repository.NewBunContentRepository(db), validator),
			mutation.Records{},
			mutation.WithHook(mutation.InvalidateHook(revalidate.NewInvalidator(pageCache))),
		)
		ack, err := pipeline.Mutate(ctx, mutation.Mutation{
			Kind:     mutation.KindSection,
			Op:       mutation.OpUpsert,
			Key:      args[0],
			Document: doc,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ Stored section '%s'\n", ack.Key)
		for _, p := range ack.Paths {
			fmt.Printf("  invalidated %s\n", p)
		}
		return nil
	},
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required (use - for stdin)")
	}
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return b, nil
}

func init() {
	contentSetCmd.Flags().StringVarP(&contentFileFlag, "file", "f", "", "Path to the JSON document, or - for stdin")
	contentCmd.AddCommand(contentGetCmd)
	contentCmd.AddCommand(contentSetCmd)
	rootCmd.AddCommand(contentCmd)
}
