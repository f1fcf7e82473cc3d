package iogtdb

import (
	"cmp"
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/gnames/gnclade/internal/iodownload"
	"golang.org/x/sync/errgroup"
)

// Release is a GTDB release with its sub-versions.
type Release struct {
	Version     string
	Date        time.Time
	SubVersions []SubVersion
}

// SubVersion is a downloadable revision of a release, e.g. release220/220.0.
type SubVersion struct {
	Version string
	Date    time.Time
	URL     string
}

// minYear filters out releases with an older layout of files.
const minYear = 2021

var (
	dirRe = regexp.MustCompile(
		`<tr>\s*<td><img[^>]*></td>\s*<td class="n">\s*<a href="([^"]+)/">[^<]*</a>\s*/\s*</td>\s*<td class="m">([^<]+)</td>`,
	)
	hrefRe = regexp.MustCompile(`href="([^"?#]+)"`)
)

// ParseIndex extracts directory entries and their dates from an HTML
// index page. URLs are built relative to base.
func ParseIndex(html, base string) []SubVersion {
	var res []SubVersion
	for _, m := range dirRe.FindAllStringSubmatch(html, -1) {
		date, err := time.Parse("2006-01-02 15:04", strings.TrimSpace(m[2]))
		if err != nil {
			continue
		}
		res = append(res, SubVersion{
			Version: m[1],
			Date:    date,
			URL:     base + m[1] + "/",
		})
	}
	slices.SortStableFunc(res, func(a, b SubVersion) int {
		return b.Date.Compare(a.Date)
	})
	return res
}

// Releases reads the release index at baseURL and every release page.
// Only releases from 2021 on are returned, newest first.
func Releases(
	ctx context.Context,
	dl *iodownload.Downloader,
	baseURL string,
) ([]Release, error) {
	html, err := dl.Page(ctx, baseURL)
	if err != nil {
		return nil, err
	}

	var res []Release
	for _, v := range ParseIndex(html, baseURL) {
		if !strings.HasPrefix(v.Version, "release") || v.Date.Year() < minYear {
			continue
		}
		res = append(res, Release{Version: v.Version, Date: v.Date})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range res {
		g.Go(func() error {
			url := baseURL + res[i].Version + "/"
			page, err := dl.Page(ctx, url)
			if err != nil {
				return err
			}
			res[i].SubVersions = ParseIndex(page, url)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(res, func(a, b Release) int {
		return b.Date.Compare(a.Date)
	})
	return res, nil
}

// Find returns the sub-version with the given name. Empty version
// selects the newest sub-version of all releases.
func Find(releases []Release, version string) (SubVersion, error) {
	var all []SubVersion
	for _, r := range releases {
		all = append(all, r.SubVersions...)
	}
	if version == "" {
		if len(all) == 0 {
			return SubVersion{}, ReleaseNotFoundError("latest")
		}
		return slices.MaxFunc(all, func(a, b SubVersion) int {
			return a.Date.Compare(b.Date)
		}), nil
	}
	for _, v := range all {
		if v.Version == version {
			return v, nil
		}
	}
	return SubVersion{}, ReleaseNotFoundError(version)
}

// Format renders releases for the terminal.
func Format(releases []Release) string {
	var sb strings.Builder
	sb.WriteString("GTDB releases and sub-versions:\n")
	for _, r := range releases {
		sb.WriteString(r.Version + " (" + r.Date.Format(time.DateOnly) + ")\n")
		for _, v := range r.SubVersions {
			sb.WriteString("  - " + v.Version + " (" +
				v.Date.Format(time.DateOnly) + ") - " + v.URL + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Files are the data files of one sub-version, as URLs or local paths.
type Files struct {
	ArTree      string
	BacTree     string
	ArMetadata  string
	BacMetadata string
}

// All returns non-empty entries.
func (f Files) All() []string {
	var res []string
	for _, v := range []string{f.ArTree, f.BacTree, f.ArMetadata, f.BacMetadata} {
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}

// missing returns names of absent entries.
func (f Files) missing() []string {
	var res []string
	if f.ArTree == "" {
		res = append(res, "ar*.tree")
	}
	if f.BacTree == "" {
		res = append(res, "bac*.tree")
	}
	if f.ArMetadata == "" {
		res = append(res, "ar*metadata*")
	}
	if f.BacMetadata == "" {
		res = append(res, "bac*metadata*")
	}
	return res
}

// classify puts name into its slot. Names are sorted before, so the
// shortest matching name wins.
func (f *Files) classify(name, value string) {
	isTree := strings.HasSuffix(name, ".tree") || strings.HasSuffix(name, ".tree.gz")
	isMeta := strings.Contains(name, "metadata")
	isAr := strings.HasPrefix(name, "ar")
	isBac := strings.HasPrefix(name, "bac")
	switch {
	case isAr && isTree && f.ArTree == "":
		f.ArTree = value
	case isBac && isTree && f.BacTree == "":
		f.BacTree = value
	case isAr && isMeta && f.ArMetadata == "":
		f.ArMetadata = value
	case isBac && isMeta && f.BacMetadata == "":
		f.BacMetadata = value
	}
}

// ParseFiles finds tree and metadata links on a sub-version page.
func ParseFiles(html, base string) (Files, error) {
	var names []string
	for _, m := range hrefRe.FindAllStringSubmatch(html, -1) {
		name := m[1]
		if strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(a), len(b)), strings.Compare(a, b))
	})

	var res Files
	for _, name := range names {
		res.classify(name, base+name)
	}
	if m := res.missing(); len(m) > 0 {
		return res, MissingFilesError(base, m)
	}
	return res, nil
}

// RemoteFiles reads the file list of a sub-version.
func RemoteFiles(
	ctx context.Context,
	dl *iodownload.Downloader,
	sv SubVersion,
) (Files, error) {
	html, err := dl.Page(ctx, sv.URL)
	if err != nil {
		return Files{}, err
	}
	return ParseFiles(html, sv.URL)
}
