package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	tarn "github.com/tarnplatform/tarn-go"

	"github.com/spf13/cobra"
)

var (
	copyItems    []string
	copyFromFile string
)

var copyHandlesCmd = &cobra.Command{
	Use:   "copy-handles",
	Short: "Copy file handles onto new objects",
	Long: `Copy file handles onto new objects, in server-side batches.

Each item names the file handle to copy and the object the copy will be
attached to, with optional file-name and content-type overrides:

  fileHandleId:objectType:objectId[:newFileName[:newContentType]]

Items can be given with repeated --item flags or one per line in a file
via --from-file (use "-" for stdin). Inputs longer than the server's
batch limit are split into sequential pages automatically.

A per-item failure (for example an unauthorized file handle) does not
abort the batch; it is reported inline and the command exits non-zero.

Examples:
  tarn-cli copy-handles --item 345:FileEntity:543 --item 789:FileEntity:987
  tarn-cli copy-handles --item '345:FileEntity:543:renamed.txt:text/plain'
  tarn-cli copy-handles --from-file handles.txt`,
	RunE: runCopyHandles,
}

func init() {
	copyHandlesCmd.Flags().StringArrayVar(&copyItems, "item", nil,
		"copy item as fileHandleId:objectType:objectId[:newFileName[:newContentType]]")
	copyHandlesCmd.Flags().StringVar(&copyFromFile, "from-file", "",
		"read copy items from a file, one per line (\"-\" for stdin)")
}

func runCopyHandles(_ *cobra.Command, _ []string) error {
	items := copyItems
	if copyFromFile != "" {
		fileItems, err := readItemsFile(copyFromFile)
		if err != nil {
			return err
		}
		items = append(items, fileItems...)
	}
	if len(items) == 0 {
		return fmt.Errorf("no copy items given: use --item or --from-file")
	}

	fileHandleIDs := make([]string, 0, len(items))
	objectTypes := make([]string, 0, len(items))
	objectIDs := make([]string, 0, len(items))
	opts := &tarn.CopyOptions{
		FileNames:    make([]*string, 0, len(items)),
		ContentTypes: make([]*string, 0, len(items)),
	}

	for _, item := range items {
		parts := strings.Split(item, ":")
		if len(parts) < 3 || len(parts) > 5 {
			return fmt.Errorf("malformed item %q: want fileHandleId:objectType:objectId[:newFileName[:newContentType]]", item)
		}
		if _, err := tarn.ParseAssociateType(parts[1]); err != nil {
			return fmt.Errorf("item %q: %w", item, err)
		}

		fileHandleIDs = append(fileHandleIDs, parts[0])
		objectTypes = append(objectTypes, parts[1])
		objectIDs = append(objectIDs, parts[2])

		var fileName, contentType *string
		if len(parts) > 3 && parts[3] != "" {
			fileName = &parts[3]
		}
		if len(parts) > 4 && parts[4] != "" {
			contentType = &parts[4]
		}
		opts.FileNames = append(opts.FileNames, fileName)
		opts.ContentTypes = append(opts.ContentTypes, contentType)
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	formatter := getFormatter()
	results, err := client.CopyFileHandles(context.Background(), fileHandleIDs, objectTypes, objectIDs, opts)
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	if err := formatter.FormatCopyResults(os.Stdout, results); err != nil {
		return err
	}

	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file handle(s) failed to copy", failed, len(results))
	}
	return nil
}

// readItemsFile reads copy items one per line, skipping blanks and
// #-comments.
func readItemsFile(path string) ([]string, error) {
	var reader *bufio.Scanner
	if path == "-" {
		reader = bufio.NewScanner(os.Stdin)
	} else {
		file, err := os.Open(path) //#nosec G304 -- path is user-provided input
		if err != nil {
			return nil, fmt.Errorf("open items file: %w", err)
		}
		defer func() { _ = file.Close() }()
		reader = bufio.NewScanner(file)
	}

	var items []string
	for reader.Scan() {
		line := strings.TrimSpace(reader.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, line)
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("read items file: %w", err)
	}
	return items, nil
}
