package github

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	gh "github.com/google/go-github/v66/github"
)

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func formatSearch(query string, repos []*gh.Repository) string {
	if len(repos) == 0 {
		return fmt.Sprintf("No repositories found for query: '%s'", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "GitHub Repository Search Results for '%s':\n\n", query)
	for i, r := range repos {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.GetFullName())
		fmt.Fprintf(&b, "   Stars: %s\n", humanize.Comma(int64(r.GetStargazersCount())))
		fmt.Fprintf(&b, "   Forks: %s\n", humanize.Comma(int64(r.GetForksCount())))
		fmt.Fprintf(&b, "   Language: %s\n", orDefault(r.GetLanguage(), "Not specified"))
		fmt.Fprintf(&b, "   Description: %s\n", orDefault(r.GetDescription(), "No description"))
		fmt.Fprintf(&b, "   URL: %s\n", r.GetHTMLURL())
		fmt.Fprintf(&b, "   Updated: %s\n\n", r.GetUpdatedAt().Format("2006-01-02"))
	}
	return b.String()
}

func formatRepository(r *gh.Repository) string {
	visibility := "Public"
	if r.GetPrivate() {
		visibility = "Private"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repository Information: %s\n\n", r.GetFullName())
	fmt.Fprintf(&b, "Description: %s\n", orDefault(r.GetDescription(), "No description"))
	fmt.Fprintf(&b, "Language: %s\n", orDefault(r.GetLanguage(), "Not specified"))
	fmt.Fprintf(&b, "Stars: %s\n", humanize.Comma(int64(r.GetStargazersCount())))
	fmt.Fprintf(&b, "Forks: %s\n", humanize.Comma(int64(r.GetForksCount())))
	fmt.Fprintf(&b, "Watchers: %s\n", humanize.Comma(int64(r.GetWatchersCount())))
	fmt.Fprintf(&b, "Size: %d KB\n", r.GetSize())
	fmt.Fprintf(&b, "Visibility: %s\n", visibility)
	fmt.Fprintf(&b, "Created: %s\n", r.GetCreatedAt().Format("2006-01-02"))
	fmt.Fprintf(&b, "Updated: %s\n", r.GetUpdatedAt().Format("2006-01-02"))
	fmt.Fprintf(&b, "URL: %s\n", r.GetHTMLURL())
	if hp := r.GetHomepage(); hp != "" {
		fmt.Fprintf(&b, "Homepage: %s\n", hp)
	}
	if len(r.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(r.Topics, ", "))
	}
	return b.String()
}

func formatFile(owner, repo, path, branch string, size int, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File Content: %s/%s/%s (branch: %s)\n", owner, repo, path, branch)
	fmt.Fprintf(&b, "Size: %s\n\n", humanize.Bytes(uint64(size)))
	b.WriteString("```\n")
	b.WriteString(content)
	b.WriteString("\n```")
	return b.String()
}

func formatListing(owner, repo, path, branch string, entries []*gh.RepositoryContent) string {
	var dirs, files []*gh.RepositoryContent
	for _, e := range entries {
		switch e.GetType() {
		case "dir":
			dirs = append(dirs, e)
		case "file":
			files = append(files, e)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Directory Listing: %s/%s/%s (branch: %s)\n\n", owner, repo, orDefault(path, "root"), branch)
	if len(dirs) > 0 {
		b.WriteString("Directories:\n")
		for _, d := range dirs {
			fmt.Fprintf(&b, "   %s/\n", d.GetName())
		}
		b.WriteString("\n")
	}
	if len(files) > 0 {
		b.WriteString("Files:\n")
		for _, f := range files {
			if f.GetSize() > 0 {
				fmt.Fprintf(&b, "   %s (%d bytes)\n", f.GetName(), f.GetSize())
			} else {
				fmt.Fprintf(&b, "   %s\n", f.GetName())
			}
		}
	}
	if len(dirs) == 0 && len(files) == 0 {
		b.WriteString("Directory is empty\n")
	}
	return b.String()
}

func isText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
