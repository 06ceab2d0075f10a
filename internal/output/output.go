// Package output serializes snapshot trees to indented JSON documents.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/deeplifeai/repojson/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	// errorEncodeSnapshotFormat reports failure to serialize the tree.
	errorEncodeSnapshotFormat = "encoding snapshot: %w"
	// errorCreateOutputFormat reports failure to create the output file.
	errorCreateOutputFormat = "creating output file %s: %w"
	// errorWriteOutputFormat reports failure to write the output file.
	errorWriteOutputFormat = "writing output file %s: %w"
	// errorCloseOutputFormat reports failure to close the output file.
	errorCloseOutputFormat = "closing output file %s: %w"
	// warningRemovePartialFormat is printed when a partial output file cannot be removed.
	warningRemovePartialFormat = "Warning: failed to remove partial output file %s: %v\n"
)

// renderSnapshotBytes serializes tree with two-space indentation. HTML
// escaping is disabled so non-ASCII and markup characters survive verbatim.
// The document ends with a single trailing newline.
func renderSnapshotBytes(tree *types.TreeNode) ([]byte, error) {
	var documentBuffer bytes.Buffer
	jsonEncoder := json.NewEncoder(&documentBuffer)
	jsonEncoder.SetEscapeHTML(false)
	jsonEncoder.SetIndent(indentPrefix, indentSpacer)
	if encodeError := jsonEncoder.Encode(tree); encodeError != nil {
		return nil, fmt.Errorf(errorEncodeSnapshotFormat, encodeError)
	}
	return documentBuffer.Bytes(), nil
}

// RenderSnapshotJSON returns the indented JSON document for tree. Directory
// nodes become JSON objects keyed by child name; file nodes become JSON
// strings holding the file content. The document carries no envelope: its
// root directly represents the snapshot root directory.
func RenderSnapshotJSON(tree *types.TreeNode) (string, error) {
	serializedDocument, renderError := renderSnapshotBytes(tree)
	if renderError != nil {
		return "", renderError
	}
	return string(serializedDocument), nil
}

// WriteSnapshot serializes tree and writes the document to outputPath,
// returning the serialized bytes. The tree is fully encoded in memory before
// the output file is created, so an encoding failure produces no file at all.
// A write or close failure removes the partial file rather than leaving a
// truncated document behind that claims success.
func WriteSnapshot(tree *types.TreeNode, outputPath string) ([]byte, error) {
	serializedDocument, renderError := renderSnapshotBytes(tree)
	if renderError != nil {
		return nil, renderError
	}

	outputFile, createError := os.Create(outputPath)
	if createError != nil {
		return nil, fmt.Errorf(errorCreateOutputFormat, outputPath, createError)
	}
	_, writeError := outputFile.Write(serializedDocument)
	closeError := outputFile.Close()
	if writeError != nil || closeError != nil {
		if removeError := os.Remove(outputPath); removeError != nil {
			fmt.Fprintf(os.Stderr, warningRemovePartialFormat, outputPath, removeError)
		}
		if writeError != nil {
			return nil, fmt.Errorf(errorWriteOutputFormat, outputPath, writeError)
		}
		return nil, fmt.Errorf(errorCloseOutputFormat, outputPath, closeError)
	}
	return serializedDocument, nil
}

// SnapshotDigest returns the xxh3-128 hex digest of a serialized snapshot
// document. Byte-identical reruns over an unchanged repository produce the
// same digest.
func SnapshotDigest(serializedDocument []byte) string {
	return fmt.Sprintf("%x", xxh3.Hash128(serializedDocument).Bytes())
}
