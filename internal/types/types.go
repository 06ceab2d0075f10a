// Package types defines every cross‑package data structure used by the repojson CLI.
package types

import (
	"bytes"
	"encoding/json"
)

const (
	NodeKindDirectory = "directory"
	NodeKindFile      = "file"

	CommandSnapshot = "snapshot"
	CommandKeyCheck = "keycheck"
)

// TreeNode is the in-memory representation of one filesystem entry inside a
// snapshot. A node is either a directory, holding a name-keyed mapping of
// children, or a file, holding its decoded text content. The root of a
// snapshot is always a directory node with no name of its own.
type TreeNode struct {
	Kind     string
	Children map[string]*TreeNode
	Content  string
}

// NewDirectoryNode returns an empty directory node.
func NewDirectoryNode() *TreeNode {
	return &TreeNode{
		Kind:     NodeKindDirectory,
		Children: make(map[string]*TreeNode),
	}
}

// NewFileNode returns a file node holding the provided content verbatim.
func NewFileNode(fileContent string) *TreeNode {
	return &TreeNode{
		Kind:    NodeKindFile,
		Content: fileContent,
	}
}

// ChildDirectory returns the directory node stored under childName, creating
// it on first use. Creation is idempotent: repeated calls with the same name
// return the same node.
func (node *TreeNode) ChildDirectory(childName string) *TreeNode {
	if existingChild, childPresent := node.Children[childName]; childPresent {
		return existingChild
	}
	createdChild := NewDirectoryNode()
	node.Children[childName] = createdChild
	return createdChild
}

// InsertFile attaches a file leaf under the directory node, keyed by the file
// basename.
func (node *TreeNode) InsertFile(fileName string, fileContent string) {
	node.Children[fileName] = NewFileNode(fileContent)
}

// MarshalJSON renders directory nodes as JSON objects keyed by child name and
// file nodes as JSON strings holding the file content. HTML escaping is
// disabled so text survives byte for byte.
func (node *TreeNode) MarshalJSON() ([]byte, error) {
	var encodedBuffer bytes.Buffer
	jsonEncoder := json.NewEncoder(&encodedBuffer)
	jsonEncoder.SetEscapeHTML(false)

	var nodePayload any
	if node.Kind == NodeKindFile {
		nodePayload = node.Content
	} else {
		nodePayload = node.Children
	}
	if encodeError := jsonEncoder.Encode(nodePayload); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(encodedBuffer.Bytes(), "\n"), nil
}

// KeyCheckResult is the validity verdict for one API credential.
type KeyCheckResult struct {
	ProviderName string `json:"provider"`
	Valid        bool   `json:"valid"`
	StatusCode   int    `json:"statusCode,omitempty"`
	Message      string `json:"message,omitempty"`
}
