// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goldstd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Slim is a term of a slim list.
type Slim struct {
	ID   string
	Name string
}

// ReadSlim returns the terms of a slim list. Each line holds a term ID
// and an optional tab separated name. Empty lines and lines starting with
// '#' are ignored.
func ReadSlim(r io.Reader) ([]Slim, error) {
	var slim []Slim
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.SplitN(line, "\t", 2)
		s := Slim{ID: strings.TrimSpace(f[0])}
		if len(f) > 1 {
			s.Name = strings.TrimSpace(f[1])
		}
		slim = append(slim, s)
	}
	return slim, sc.Err()
}

// FileName returns the name of the gene set file for the term.
func (s Slim) FileName() string {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', ' ', '\t':
			return '_'
		}
		return r
	}, name)
}

// GeneSet is a named set of genes.
type GeneSet struct {
	Name  string
	Genes []string
}

// GeneSets returns the gene set of each of the slim terms. Terms that are
// not in the ontology or have no annotated genes are logged and omitted.
func (o *Ontology) GeneSets(slim []Slim) []GeneSet {
	var sets []GeneSet
	for _, s := range slim {
		genes, err := o.Genes(s.ID)
		if err != nil {
			log.Warn(err)
			continue
		}
		if len(genes) == 0 {
			log.Warnf("no genes annotated to %s", s.ID)
			continue
		}
		sets = append(sets, GeneSet{Name: s.FileName(), Genes: genes})
	}
	return sets
}

// WriteGeneSets writes each gene set to a file named for the set in dir,
// one gene per line. The directory is created if it does not exist.
func WriteGeneSets(dir string, sets []GeneSet) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}
	for _, s := range sets {
		err = writeLines(filepath.Join(dir, s.Name), s.Genes)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeLines(path string, lines []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return w.Flush()
}

// Pair is a gene pair answer.
type Pair struct {
	A, B    string
	Related bool
}

// Answers returns the gene pair answers for the positive and negative
// gene sets, sorted by gene names. Pairs of genes sharing a positive set
// are related. Pairs of genes where one is in a positive set and the other
// is in a negative set, and that share no positive set, are unrelated.
func Answers(positives, negatives []GeneSet) []Pair {
	answers := make(map[[2]string]bool)
	inPositive := make(map[string]bool)
	for _, s := range positives {
		for i, a := range s.Genes {
			inPositive[a] = true
			for _, b := range s.Genes[i+1:] {
				answers[key(a, b)] = true
			}
		}
	}
	inNegative := make(map[string]bool)
	for _, s := range negatives {
		for _, g := range s.Genes {
			inNegative[g] = true
		}
	}
	for a := range inPositive {
		for b := range inNegative {
			if a == b {
				continue
			}
			k := key(a, b)
			if _, ok := answers[k]; !ok {
				answers[k] = false
			}
		}
	}

	pairs := make([]Pair, 0, len(answers))
	for k, rel := range answers {
		pairs = append(pairs, Pair{A: k[0], B: k[1], Related: rel})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

func key(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// WriteDAT writes the pairs to w in the Sleipnir DAT text format.
func WriteDAT(w io.Writer, pairs []Pair) error {
	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		v := 0
		if p.Related {
			v = 1
		}
		_, err := fmt.Fprintf(bw, "%s\t%s\t%d\n", p.A, p.B, v)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Quant is the bin edge specification for binary gold standard answers.
const Quant = "0.5\t1.5\n"

// WriteQuant writes the quant file for a gold standard DAT or DAB at path.
// The quant file has the same path with the extension replaced by .quant.
func WriteQuant(path string) error {
	q := strings.TrimSuffix(path, filepath.Ext(path)) + ".quant"
	return os.WriteFile(q, []byte(Quant), 0o644)
}
