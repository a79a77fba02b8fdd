// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goldstd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/kortschak/troilkatt/internal/crawl"
	"github.com/kortschak/troilkatt/internal/soft"
)

// Organism describes the sources of an organism's gold standard. Sources
// may be URLs or local paths. Local paths may hold TROILKATT.* variables.
type Organism struct {
	Ontology    string `yaml:"ontology"`
	Annotations string `yaml:"annotations"`
	Slim        string `yaml:"slim"`
	Negative    string `yaml:"negative,omitempty"`
	// PartOf specifies whether part_of
	// relationships are followed.
	PartOf bool `yaml:"part_of,omitempty"`
}

// Config holds the gold standard sources by organism.
type Config struct {
	Organisms map[string]Organism `yaml:"organisms"`
}

// DefaultConfig is the configuration used when none is provided.
var DefaultConfig = Config{Organisms: map[string]Organism{
	"human": {
		Ontology:    "http://www.geneontology.org/ontology/obo_format_1_2/gene_ontology_ext.obo",
		Annotations: "http://cvsweb.geneontology.org/cgi-bin/cvsweb.cgi/go/gene-associations/gene_association.goa_human.gz?rev=HEAD",
		Slim:        "TROILKATT.GLOBALMETA_DIR/GO_slim_sleipnir.txt",
		Negative:    "TROILKATT.GLOBALMETA_DIR/go_terms_negative.txt",
	},
}}

// ReadConfig reads a YAML gold standard configuration from r.
func ReadConfig(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&c)
	if err != nil {
		return nil, fmt.Errorf("could not decode gold standard configuration: %w", err)
	}
	for name, o := range c.Organisms {
		if o.Ontology == "" || o.Annotations == "" || o.Slim == "" {
			return nil, fmt.Errorf("organism %s: ontology, annotations and slim are required", name)
		}
	}
	return &c, nil
}

// Names returns the sorted organism names of the configuration.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Organisms))
	for n := range c.Organisms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Builder builds gold standards.
type Builder struct {
	// Fetcher retrieves remote sources.
	Fetcher crawl.Fetcher
	// DownloadDir is the directory remote
	// sources are retrieved into.
	DownloadDir string
	// OutputDir is the directory gold
	// standards are written to.
	OutputDir string
}

// Result summarises a built gold standard.
type Result struct {
	Organism  string
	Positives int
	Negatives int
	Related   int
	Unrelated int
	// DAT is the path to the written pairs.
	DAT string
}

// Build retrieves the sources of org and writes its positive and negative
// gene sets to <name>/positives and <name>/negatives below the output
// directory, and the gene pair answers to <name>_positives.dat with its
// quant file.
func (b *Builder) Build(ctx context.Context, name string, org Organism) (*Result, error) {
	log.Infof("[build %s gold standard]", name)
	r, err := b.open(ctx, org.Ontology)
	if err != nil {
		return nil, err
	}
	ont, err := NewOntology(r)
	r.Close()
	if err != nil {
		return nil, fmt.Errorf("could not read ontology: %w", err)
	}
	ont.PartOf = org.PartOf

	r, err = b.open(ctx, org.Annotations)
	if err != nil {
		return nil, err
	}
	annots, err := ReadGAF(r)
	r.Close()
	if err != nil {
		return nil, fmt.Errorf("could not read annotations: %w", err)
	}
	missing := ont.Annotate(annots)
	log.Infof("%d annotations read: %d to unknown terms", len(annots), missing)

	res := Result{Organism: name}
	var pos, neg []GeneSet
	pos, err = b.sets(ont, org.Slim)
	if err != nil {
		return nil, err
	}
	res.Positives = len(pos)
	err = WriteGeneSets(filepath.Join(b.OutputDir, name, "positives"), pos)
	if err != nil {
		return nil, err
	}
	if org.Negative != "" {
		neg, err = b.sets(ont, org.Negative)
		if err != nil {
			return nil, err
		}
		res.Negatives = len(neg)
		err = WriteGeneSets(filepath.Join(b.OutputDir, name, "negatives"), neg)
		if err != nil {
			return nil, err
		}
	}

	pairs := Answers(pos, neg)
	for _, p := range pairs {
		if p.Related {
			res.Related++
		} else {
			res.Unrelated++
		}
	}
	res.DAT = filepath.Join(b.OutputDir, name+"_positives.dat")
	f, err := os.Create(res.DAT)
	if err != nil {
		return nil, err
	}
	err = WriteDAT(f, pairs)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	err = WriteQuant(res.DAT)
	if err != nil {
		return nil, err
	}
	log.Infof("%s: %d positive sets, %d negative sets, %d related and %d unrelated pairs",
		name, res.Positives, res.Negatives, res.Related, res.Unrelated)
	return &res, nil
}

func (b *Builder) sets(ont *Ontology, path string) ([]GeneSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	slim, err := ReadSlim(f)
	if err != nil {
		return nil, fmt.Errorf("could not read slim list %s: %w", path, err)
	}
	return ont.GeneSets(slim), nil
}

// open returns a reader for the source src, retrieving it into the
// download directory first if it is a URL. Sources with a .gz extension
// are decompressed.
func (b *Builder) open(ctx context.Context, src string) (io.ReadCloser, error) {
	local := src
	u, err := url.Parse(src)
	if err == nil && u.Scheme != "" && u.Host != "" {
		local = filepath.Join(b.DownloadDir, path.Base(u.Path))
		err = os.MkdirAll(b.DownloadDir, 0o755)
		if err != nil {
			return nil, err
		}
		f, err := os.Create(local)
		if err != nil {
			return nil, err
		}
		log.Infof("download %s", src)
		err = b.Fetcher.FetchURL(ctx, src, f)
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(local)
			return nil, err
		}
	}
	return soft.Open(local)
}
