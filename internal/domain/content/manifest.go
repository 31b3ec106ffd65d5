package content

// Node is one content record as returned by the backend read endpoint.
type Node struct {
	Identifier      string   `json:"identifier"`
	Name            string   `json:"name"`
	MimeType        string   `json:"mimeType"`
	PrimaryCategory string   `json:"primaryCategory"`
	StreamingURL    string   `json:"streamingUrl"`
	ArtifactURL     string   `json:"artifactUrl"`
	PreviewURL      string   `json:"previewUrl"`
	LeafNodes       []string `json:"leafNodes"`
}

// IsCollection reports whether n groups other content.
func (n *Node) IsCollection() bool { return n.MimeType == MimeCollection }

// Manifest is the flattened set of candidate nodes under a content id,
// in manifest order.
type Manifest struct {
	ContentID string
	Root      Node
	Leaves    []Node
}

// Candidates returns the nodes that may become artifacts. A root without
// leaves that is not itself a collection is its own single candidate.
func (m *Manifest) Candidates() []Node {
	if len(m.Leaves) == 0 && len(m.Root.LeafNodes) == 0 && !m.Root.IsCollection() {
		return []Node{m.Root}
	}
	return m.Leaves
}

// Artifact is one streamable document resolved from a manifest.
type Artifact struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name,omitempty"`
	MimeType   string `json:"mime_type"`
	URL        string `json:"url"`
}

// Resolution is the normalized content-resolution payload.
type Resolution struct {
	ContentID  string     `json:"content_id"`
	Artifacts  []Artifact `json:"artifacts"`
	Count      int        `json:"count"`
	Candidates int        `json:"candidates"`
	Excluded   int        `json:"excluded"`
	Message    string     `json:"message"`
}

// Resolve applies the resolution algorithm to candidates: ECML nodes are
// excluded, nodes without a streamable PDF URL are dropped, duplicates are
// removed, and manifest order is kept.
func Resolve(contentID string, candidates []Node) Resolution {
	res := Resolution{
		ContentID:  contentID,
		Artifacts:  []Artifact{},
		Candidates: len(candidates),
	}
	seen := make(map[string]struct{}, len(candidates))
	for i := range candidates {
		n := &candidates[i]
		if n.MimeType == MimeECML {
			res.Excluded++
			continue
		}
		url, ok := streamableURL(n)
		if !ok {
			continue
		}
		if _, dup := seen[n.Identifier]; dup {
			continue
		}
		seen[n.Identifier] = struct{}{}
		res.Artifacts = append(res.Artifacts, Artifact{
			Identifier: n.Identifier,
			Name:       n.Name,
			MimeType:   n.MimeType,
			URL:        url,
		})
	}
	res.Count = len(res.Artifacts)

	switch {
	case res.Count > 0:
		res.Message = "resolved streamable artifacts for non-ECML content"
	case res.Candidates == 0:
		res.Message = "content has no items in its manifest"
	default:
		res.Message = "content exists but has no streamable artifact"
	}
	return res
}

// streamableURL returns the direct document URL for a PDF node.
func streamableURL(n *Node) (string, bool) {
	if n.MimeType != MimePDF {
		return "", false
	}
	if n.StreamingURL != "" {
		return n.StreamingURL, true
	}
	if n.ArtifactURL != "" {
		return n.ArtifactURL, true
	}
	return "", false
}
