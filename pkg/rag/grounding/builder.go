// Package grounding packs retrieved passages into a bounded context block and the
// citation index the model is allowed to reference.
package grounding

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"beaglemind-be/pkg/knowledge"
)

const (
	// header ":\n" plus the inter-block separator
	headerOverhead = 4
	blockSeparator = 2

	ForumFileType = ".forum"
	ForumHost     = "forum.beagleboard.org"
	ForumMarker   = "Forum Reply"

	contextSummaryFormat = "RELEVANT CONTEXT FROM KNOWLEDGE BASE (total matches: %d, included: %d)"
	sourcesHeading       = "# SOURCE LINKS (Cite these inline and list in References)"
	GroundingInstruction = "Use the context above for grounding. If insufficient, combine with general BeagleBoard knowledge and clearly label assumptions."
)

// Style selects block labelling and the wrapper around admitted blocks.
type Style struct {
	Label     string
	SkipEmpty bool
	Planning  bool
}

var (
	ChatStyle     = Style{Label: "Context"}
	PlanningStyle = Style{Label: "Snippet", SkipEmpty: true, Planning: true}
)

// SourceEntry maps a context sequence number to the URL the model may cite.
type SourceEntry struct {
	Seq      int    `json:"seq"`
	Citation string `json:"citation"`
	URL      string `json:"url"`
	Forum    bool   `json:"forum"`
}

func (s SourceEntry) Line() string {
	return fmt.Sprintf("C%d: %s", s.Seq, s.Citation)
}

// Block is one admitted passage.
type Block struct {
	Seq      int
	Header   string
	Body     string
	Source   *SourceEntry
	Images   []string
	Rendered string
}

type BuiltContext struct {
	Included int
	Sources  []SourceEntry
	Blocks   []Block
	Used     int
	// Text is empty when nothing was admitted.
	Text string
}

// Build packs items with the chat layout.
func Build(items []knowledge.RetrievedItem, totalFound, budget int) BuiltContext {
	return BuildWithStyle(items, totalFound, budget, ChatStyle)
}

// BuildWithStyle admits items in order until the budget is exhausted. Sequence numbers
// are positions in items, so skipped or dropped items leave gaps. Admission stops at the
// first item that cannot fit; later, smaller items are not tried.
func BuildWithStyle(items []knowledge.RetrievedItem, totalFound, budget int, style Style) BuiltContext {
	var built BuiltContext
	used := 0

	for i, item := range items {
		seq := i + 1
		meta := item.Metadata
		body := strings.TrimSpace(item.Content)
		if style.SkipEmpty && body == "" {
			continue
		}

		forum := IsForumReply(meta)
		header := buildHeader(style.Label, seq, meta, forum)

		var source *SourceEntry
		trailer := ""
		if link := meta.SourceLink(); link != "" {
			citation := link
			if forum {
				citation = "[" + ForumMarker + "] " + link
			}
			source = &SourceEntry{Seq: seq, Citation: citation, URL: link, Forum: forum}
			trailer = "\n(Source: " + citation + ")"
		}

		images := ImageLinks(meta)
		imageText := renderImages(seq, images)

		allowed := budget - used - runeLen(header) - headerOverhead - runeLen(trailer) - runeLen(imageText)
		if allowed <= 0 {
			break
		}

		clipped := clip(body, allowed)
		rendered := header + ":\n" + clipped + trailer + imageText
		used += runeLen(rendered) + blockSeparator

		built.Blocks = append(built.Blocks, Block{
			Seq:      seq,
			Header:   header,
			Body:     clipped,
			Source:   source,
			Images:   images,
			Rendered: rendered,
		})
		if source != nil {
			built.Sources = append(built.Sources, *source)
		}

		if used >= budget {
			break
		}
	}

	built.Included = len(built.Blocks)
	built.Used = used
	if built.Included == 0 {
		built.Sources = nil
		return built
	}

	if style.Planning {
		built.Text = renderPlanning(built.Blocks)
	} else {
		built.Text = renderChat(built, totalFound)
	}
	return built
}

// IsForumReply is a best-effort check for passages ingested from the community forum.
func IsForumReply(meta knowledge.Metadata) bool {
	if meta.FileType() == ForumFileType {
		return true
	}
	if strings.Contains(strings.ToLower(meta.RepoName()), "forum") {
		return true
	}
	return strings.Contains(meta.SourceLink(), ForumHost)
}

func buildHeader(label string, seq int, meta knowledge.Metadata, forum bool) string {
	var tags []string
	if v := meta.FileName(); v != "" {
		tags = append(tags, "File: "+v)
	}
	if v := meta.RepoName(); v != "" {
		tags = append(tags, "Repo: "+v)
	}
	if v := meta.Language(); v != "" {
		tags = append(tags, "Lang: "+v)
	}
	if meta.HasCode() {
		tags = append(tags, "Contains Code")
	}
	if forum {
		tags = append(tags, ForumMarker)
	}

	header := fmt.Sprintf("%s %d", label, seq)
	if len(tags) > 0 {
		header += " [" + strings.Join(tags, ", ") + "]"
	}
	return header
}

func renderChat(built BuiltContext, totalFound int) string {
	var sb strings.Builder

	sb.WriteString("\n\n<context>\n")
	sb.WriteString(fmt.Sprintf(contextSummaryFormat, totalFound, built.Included))
	sb.WriteString("\n\n")
	for i, b := range built.Blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b.Rendered)
	}
	sb.WriteString("\n</context>\n")

	if len(built.Sources) > 0 {
		sb.WriteString("\n<sources>\n")
		sb.WriteString(sourcesHeading)
		sb.WriteString("\n")
		for _, s := range built.Sources {
			sb.WriteString(s.Line())
			sb.WriteString("\n")
		}
		sb.WriteString("</sources>\n")
	}

	sb.WriteString("\n")
	sb.WriteString(GroundingInstruction)
	return sb.String()
}

func renderPlanning(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Rendered
	}
	return "<retrieved_context>\n" + strings.Join(parts, "\n\n") + "\n</retrieved_context>"
}

func clip(s string, limit int) string {
	if runeLen(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
