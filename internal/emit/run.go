package emit

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/roach88/francagen/internal/ir"
	"github.com/roach88/francagen/internal/output"
	"github.com/roach88/francagen/internal/session"
)

// TypesTarget names the types header in FileResult.Target.
const TypesTarget = TypesHeaderTemplate

// FileResult describes one written file.
type FileResult struct {
	Path         string         `json:"path"`
	Package      string         `json:"package"`
	Container    string         `json:"container"`
	Target       string         `json:"target"`
	Declarations int            `json:"declarations"`
	Bytes        int            `json:"bytes"`
	Digest       string         `json:"digest"`
	Stats        *session.Stats `json:"stats,omitempty"`
}

// Report summarizes a Run.
type Report struct {
	Files []FileResult `json:"files"`
}

// Run renders and writes every container of pkgs: interfaces first, then
// type collections, in package order. Interfaces get the plain targets
// before their types header.
func (p *Pipeline) Run(ctx context.Context, pkgs []*ir.Package) (*Report, error) {
	if p.writer == nil {
		return nil, errors.New("emit: output writer is required")
	}

	report := &Report{}
	for _, pkg := range pkgs {
		for _, cont := range pkg.Containers() {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if err := p.runContainer(ctx, pkg, cont, report); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

func (p *Pipeline) runContainer(ctx context.Context, pkg *ir.Package, cont *ir.Container, report *Report) error {
	if cont.Kind == ir.ContainerInterface {
		for _, target := range p.targets {
			text, err := p.RenderTarget(pkg, cont, target)
			if err != nil {
				return err
			}
			written, err := p.writer.Write(ctx, target.Prefix, cont.Name, target.Suffix, text)
			if err != nil {
				return errors.Wrapf(err, "writing %s for %s", target.Template, cont.Name)
			}
			if err := p.record(ctx, report, fileResult(written, pkg, cont, target.Template, nil)); err != nil {
				return err
			}
		}
	}

	doc, err := p.RenderTypes(pkg, cont)
	if err != nil {
		return err
	}
	if doc.Empty() {
		p.logger.Debugw("No declarations, writing empty types header", "package", pkg.Name, "container", cont.Name)
	}

	written, err := p.writer.Write(ctx, "", cont.Name, TypesSuffix, doc.Text)
	if err != nil {
		return errors.Wrapf(err, "writing types header for %s", cont.Name)
	}
	var stats *session.Stats
	if !doc.Empty() {
		stats = &doc.Stats
	}
	fr := fileResult(written, pkg, cont, TypesTarget, stats)
	fr.Declarations = len(doc.Declarations)
	return p.record(ctx, report, fr)
}

func (p *Pipeline) record(ctx context.Context, report *Report, fr FileResult) error {
	report.Files = append(report.Files, fr)
	if p.recorder == nil {
		return nil
	}
	if err := p.recorder(ctx, fr); err != nil {
		return errors.Wrapf(err, "recording %s", fr.Path)
	}
	return nil
}

func fileResult(f output.File, pkg *ir.Package, cont *ir.Container, target string, stats *session.Stats) FileResult {
	return FileResult{
		Path:      f.Path,
		Package:   pkg.Name,
		Container: cont.Name,
		Target:    target,
		Bytes:     f.Bytes,
		Digest:    f.Digest,
		Stats:     stats,
	}
}
