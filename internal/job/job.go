package job

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Belphemur/BatchFetch/internal/apperrors"
	"github.com/Belphemur/BatchFetch/internal/models"
)

// Definition is the user-facing description of a batch, as read from presets,
// the config file, environment variables and flags.
type Definition struct {
	Label        string `mapstructure:"label"`
	URLTemplate  string `mapstructure:"base_url"`
	FileTemplate string `mapstructure:"file_name"`
	OutputDir    string `mapstructure:"output_dir"`
	Start        int    `mapstructure:"start"`
	End          int    `mapstructure:"end"`
	SkipExisting bool   `mapstructure:"skip_existing"`
	Client       string `mapstructure:"client"`
}

// Job is a compiled, immutable Definition. It is built once at startup and
// passed to the fetcher; it carries no mutable state.
type Job struct {
	Name         string
	Label        string
	OutputDir    string
	Start        int
	End          int
	SkipExisting bool
	Client       models.ClientKind

	urlTemplate  *template.Template
	fileTemplate *template.Template
}

// templateData is what URL and file name templates can reference.
type templateData struct {
	ID int
}

// Compile validates d and parses its templates.
func Compile(name string, d Definition) (*Job, error) {
	if strings.TrimSpace(d.URLTemplate) == "" {
		return nil, apperrors.NewInvalidJobError("base_url", "URL template is empty")
	}
	if strings.TrimSpace(d.FileTemplate) == "" {
		return nil, apperrors.NewInvalidJobError("file_name", "file name template is empty")
	}
	if strings.TrimSpace(d.OutputDir) == "" {
		return nil, apperrors.NewInvalidJobError("output_dir", "output directory is empty")
	}
	if d.Start < 0 {
		return nil, apperrors.NewInvalidJobError("start", fmt.Sprintf("identifier %d is negative", d.Start))
	}
	if d.End == math.MaxInt {
		return nil, apperrors.NewInvalidJobError("end", fmt.Sprintf("identifier %d is out of range", d.End))
	}
	if d.Start > d.End {
		return nil, apperrors.NewInvalidJobError("range", fmt.Sprintf("start %d is greater than end %d", d.Start, d.End))
	}

	kind, err := models.ParseClientKind(d.Client)
	if err != nil {
		return nil, apperrors.NewInvalidJobError("client", err.Error())
	}

	urlTmpl, err := template.New("base_url").Option("missingkey=error").Parse(d.URLTemplate)
	if err != nil {
		return nil, apperrors.NewInvalidJobError("base_url", err.Error())
	}
	fileTmpl, err := template.New("file_name").Option("missingkey=error").Parse(d.FileTemplate)
	if err != nil {
		return nil, apperrors.NewInvalidJobError("file_name", err.Error())
	}

	label := strings.TrimSpace(d.Label)
	if label == "" {
		label = name
	}

	j := &Job{
		Name:         name,
		Label:        label,
		OutputDir:    filepath.Clean(d.OutputDir),
		Start:        d.Start,
		End:          d.End,
		SkipExisting: d.SkipExisting,
		Client:       kind,
		urlTemplate:  urlTmpl,
		fileTemplate: fileTmpl,
	}

	// Render the first identifier so template mistakes surface before any download.
	if _, err := j.Target(j.Start); err != nil {
		return nil, err
	}
	return j, nil
}

// Len returns the number of identifiers in the inclusive range.
func (j *Job) Len() int {
	return j.End - j.Start + 1
}

// URL renders the source URL for id.
func (j *Job) URL(id int) (string, error) {
	u, err := render(j.urlTemplate, id)
	if err != nil {
		return "", apperrors.NewInvalidJobError("base_url", err.Error())
	}
	return u, nil
}

// FileName renders the destination file name for id.
func (j *Job) FileName(id int) (string, error) {
	name, err := render(j.fileTemplate, id)
	if err != nil {
		return "", apperrors.NewInvalidJobError("file_name", err.Error())
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", apperrors.NewInvalidJobError("file_name", fmt.Sprintf("%q is not a plain file name", name))
	}
	if strings.HasPrefix(name, ".") {
		return "", apperrors.NewInvalidJobError("file_name", fmt.Sprintf("%q must not be a hidden file", name))
	}
	return name, nil
}

// Target derives the fetch target for id. It is a pure function of id.
func (j *Job) Target(id int) (models.FetchTarget, error) {
	u, err := j.URL(id)
	if err != nil {
		return models.FetchTarget{}, err
	}
	name, err := j.FileName(id)
	if err != nil {
		return models.FetchTarget{}, err
	}
	return models.FetchTarget{
		ID:   id,
		URL:  u,
		Path: filepath.Join(j.OutputDir, name),
	}, nil
}

func render(t *template.Template, id int) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, templateData{ID: id}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
