package tarn

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// TransferSummary is the formatter-facing record of one completed
// upload or download.
type TransferSummary struct {
	Direction string `json:"direction"` // "upload" or "download"
	Source    string `json:"source"`
	Target    string `json:"target"`
	Size      int64  `json:"size_bytes"`
}

// Formatter formats results for output.
type Formatter interface {
	FormatCopyResults(w io.Writer, results []FileHandleCopyResult) error
	FormatTransfer(w io.Writer, summary *TransferSummary) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatCopyResults formats file-handle copy results as human-readable text.
func (f *HumanFormatter) FormatCopyResults(w io.Writer, results []FileHandleCopyResult) error {
	copied := 0
	for i := range results {
		r := &results[i]
		if r.Failed() {
			_, _ = fmt.Fprintf(w, "Failed: %s (%s)\n", r.OriginalFileHandleID, r.FailureCode)
			continue
		}
		copied++
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Copied: %s -> %s (%s)\n",
				r.OriginalFileHandleID, r.NewFileHandle.ID, formatSize(r.NewFileHandle.ContentSize))
		}
	}
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d of %d file handle(s) copied\n", copied, len(results))
	}
	return nil
}

// FormatTransfer formats a transfer summary as human-readable text.
func (f *HumanFormatter) FormatTransfer(w io.Writer, summary *TransferSummary) error {
	if f.Quiet {
		return nil
	}
	switch summary.Direction {
	case "download":
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", summary.Source, summary.Target, formatSize(summary.Size))
	default:
		_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s)\n", summary.Source, summary.Target, formatSize(summary.Size))
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if len(profiles[i].Endpoint) > maxEndpointLen {
			maxEndpointLen = len(profiles[i].Endpoint)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}
	if maxEndpointLen > 50 {
		maxEndpointLen = 50
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "AUTH TOKEN")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		endpoint := p.Endpoint
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, maskSecret(p.AuthToken, showSecrets))
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:          %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint:      %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Auth Token:    %s\n", maskSecret(profile.AuthToken, showSecrets))
	if profile.AWSProfile != "" {
		_, _ = fmt.Fprintf(w, "AWS Profile:   %s\n", profile.AWSProfile)
	}
	if profile.SFTPUsername != "" {
		_, _ = fmt.Fprintf(w, "SFTP Username: %s\n", profile.SFTPUsername)
		_, _ = fmt.Fprintf(w, "SFTP Password: %s\n", maskSecret(profile.SFTPPassword, showSecrets))
	}
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatCopyResults formats file-handle copy results as JSON.
func (f *JSONFormatter) FormatCopyResults(w io.Writer, results []FileHandleCopyResult) error {
	output := struct {
		Results []FileHandleCopyResult `json:"copyResults"`
	}{
		Results: results,
	}
	return writeJSON(w, output)
}

// FormatTransfer formats a transfer summary as JSON.
func (f *JSONFormatter) FormatTransfer(w io.Writer, summary *TransferSummary) error {
	return writeJSON(w, summary)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name      string `json:"name"`
		Endpoint  string `json:"endpoint"`
		AuthToken string `json:"auth_token,omitempty"`
		Default   bool   `json:"default"`
	}

	output := make([]jsonProfile, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		jp := jsonProfile{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Default:  p.Name == defaultName,
		}
		if showSecrets {
			jp.AuthToken = p.AuthToken
		}
		output[i] = jp
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name      string `json:"name"`
		Endpoint  string `json:"endpoint"`
		AuthToken string `json:"auth_token,omitempty"`
		Default   bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Default:  isDefault,
	}
	if showSecrets {
		output.AuthToken = profile.AuthToken
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// maskSecret hides a secret value unless show is true.
func maskSecret(secret string, show bool) string {
	if secret == "" {
		return "(not set)"
	}
	if show {
		return secret
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", 8)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
