// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sleipnir

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	sp "github.com/scipipe/scipipe"
	spcomp "github.com/scipipe/scipipe/components"
	log "github.com/sirupsen/logrus"
)

// Tools locates the Sleipnir binaries.
type Tools struct {
	// Dir is the directory holding the binaries.
	Dir string
	// Tasks is the maximum number of concurrently
	// running tasks. If zero, one task is run at a time.
	Tasks int
	// Log is the path of the workflow log file. If
	// empty, the log is written to a time stamped file
	// in the log directory of the working directory.
	Log string
}

func (t Tools) bin(name string) string {
	return filepath.Join(t.Dir, name)
}

func (t Tools) tasks() int {
	if t.Tasks < 1 {
		return 1
	}
	return t.Tasks
}

// Job is a single file conversion.
type Job struct {
	// In is the input file path.
	In string
	// Out is the output file path.
	Out string
	// Tmp is an intermediate file path.
	// It is removed after a run.
	Tmp string
}

// stem returns the base name of path up to its first dot.
func stem(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// absJobs returns the jobs with absolute paths. Workflow tasks are run in
// temporary directories, so relative paths would not resolve.
func absJobs(jobs []Job) ([]Job, error) {
	abs := make([]Job, len(jobs))
	for i, j := range jobs {
		var err error
		for _, p := range []struct {
			dst *string
			src string
		}{
			{&abs[i].In, j.In},
			{&abs[i].Out, j.Out},
			{&abs[i].Tmp, j.Tmp},
		} {
			if p.src == "" {
				continue
			}
			*p.dst, err = filepath.Abs(p.src)
			if err != nil {
				return nil, err
			}
		}
	}
	return abs, nil
}

// QDABJobs returns the jobs converting each of the PCL files to
// <outDir>/<stem>.qdab, with distances written to <datDir>/<stem>.dat.
func QDABJobs(pcls []string, datDir, outDir string) []Job {
	jobs := make([]Job, len(pcls))
	for i, p := range pcls {
		s := stem(p)
		jobs[i] = Job{
			In:  p,
			Tmp: filepath.Join(datDir, s+".dat"),
			Out: filepath.Join(outDir, s+".qdab"),
		}
	}
	return jobs
}

// QDAB returns a batch computing gene pair distances for each job's
// PCL with Distancer and quantizing them with Dat2Dab using the bins in
// the quant file.
func (t Tools) QDAB(name string, jobs []Job, quant string) (*Batch, error) {
	abs, err := absJobs(jobs)
	if err != nil {
		return nil, err
	}
	quant, err = filepath.Abs(quant)
	if err != nil {
		return nil, err
	}
	b := newBatch(newWorkflow(name, t.tasks(), t.Log), jobs, abs)
	for i, j := range abs {
		s := stem(j.In)
		pcl := spcomp.NewFileSource(b.Workflow, "pcl_"+s, j.In)

		distancer := b.Workflow.NewProc("distancer_"+s, t.bin("Distancer")+" -i {i:pcl} -o {o:dat}")
		distancer.In("pcl").From(pcl.Out())
		distancer.SetOut("dat", j.Tmp)
		distancer.CustomExecute = b.execute(i)

		dat2dab := b.Workflow.NewProc("dat2dab_"+s, t.bin("Dat2Dab")+" -i {i:dat} -q "+quant+" -o {o:qdab}")
		dat2dab.In("dat").From(distancer.Out("dat"))
		dat2dab.SetOut("qdab", j.Out)
		dat2dab.CustomExecute = b.execute(i)
	}
	return b, nil
}

// Impute returns a batch imputing missing values in each job's PCL
// with KNNImputer using k neighbours, skipping genes with more than the
// fraction missing of values missing.
func (t Tools) Impute(name string, jobs []Job, k int, missing float64) (*Batch, error) {
	abs, err := absJobs(jobs)
	if err != nil {
		return nil, err
	}
	b := newBatch(newWorkflow(name, t.tasks(), t.Log), jobs, abs)
	for i, j := range abs {
		s := stem(j.In)
		pcl := spcomp.NewFileSource(b.Workflow, "pcl_"+s, j.In)

		knn := b.Workflow.NewProc("knnimputer_"+s, fmt.Sprintf("%s -i {i:pcl} -o {o:imputed} -k %d -m %g", t.bin("KNNImputer"), k, missing))
		knn.In("pcl").From(pcl.Out())
		knn.SetOut("imputed", j.Out)
		knn.CustomExecute = b.execute(i)
	}
	return b, nil
}

func newWorkflow(name string, tasks int, logFile string) *sp.Workflow {
	if logFile == "" {
		return sp.NewWorkflow(name, tasks)
	}
	return sp.NewWorkflowCustomLogFile(name, tasks, logFile)
}

// Batch is a workflow over a set of jobs. A failing task fails only
// its own job.
type Batch struct {
	// Workflow holds the processes of the batch.
	Workflow *sp.Workflow

	keys []string
	jobs []Job

	mu     sync.Mutex
	failed map[int]error
}

func newBatch(wf *sp.Workflow, jobs, abs []Job) *Batch {
	keys := make([]string, len(jobs))
	for i, j := range jobs {
		keys[i] = j.In
	}
	return &Batch{Workflow: wf, keys: keys, jobs: abs, failed: make(map[int]error)}
}

// execute returns a task executor for the ith job. The task command is
// run in the task's working directory. When the command fails or does
// not write its outputs, or an earlier task of the job has failed, empty
// outputs are written for the task so that the workflow can complete.
func (b *Batch) execute(i int) func(*sp.Task) {
	return func(t *sp.Task) {
		if b.err(i) == nil {
			cmd := exec.Command("bash", "-c", t.Command)
			cmd.Dir = t.TempDir()
			out, err := cmd.CombinedOutput()
			if err != nil {
				err = fmt.Errorf("%s failed: %w", t.Name, err)
				if msg := bytes.TrimSpace(out); len(msg) != 0 {
					err = fmt.Errorf("%w: %s", err, msg)
				}
				b.fail(i, err)
			}
			for _, ip := range t.OutIPs {
				_, err = os.Stat(filepath.Join(t.TempDir(), ip.TempPath()))
				if err != nil {
					b.fail(i, fmt.Errorf("%s did not write %s", t.Name, ip.Path()))
				}
			}
		}
		if b.err(i) == nil {
			return
		}
		for _, ip := range t.OutIPs {
			p := filepath.Join(t.TempDir(), ip.TempPath())
			if _, err := os.Stat(p); err == nil {
				continue
			}
			err := os.WriteFile(p, nil, 0o644)
			if err != nil {
				log.Errorf("failed to write placeholder for %s: %v", ip.Path(), err)
			}
		}
	}
}

func (b *Batch) fail(i int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failed[i] == nil {
		b.failed[i] = err
	}
}

func (b *Batch) err(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed[i]
}

// Run runs the batch and removes the intermediate files of its jobs and
// their audit records. The outputs of failed jobs are removed and their
// errors are returned keyed by the job's input path.
func (b *Batch) Run() (failed map[string]error, err error) {
	if len(b.jobs) == 0 {
		return nil, nil
	}
	b.Workflow.Run()

	b.mu.Lock()
	defer b.mu.Unlock()
	failed = make(map[string]error)
	for i, jerr := range b.failed {
		log.Errorf("%s: %v", b.keys[i], jerr)
		failed[b.keys[i]] = jerr
		if b.jobs[i].Out == "" {
			continue
		}
		for _, p := range []string{b.jobs[i].Out, b.jobs[i].Out + ".audit.json"} {
			err = os.Remove(p)
			if err != nil && !os.IsNotExist(err) {
				return failed, err
			}
		}
	}
	return failed, removeIntermediates(b.jobs)
}

func removeIntermediates(jobs []Job) error {
	for _, j := range jobs {
		if j.Tmp == "" {
			continue
		}
		for _, p := range []string{j.Tmp, j.Tmp + ".audit.json"} {
			err := os.Remove(p)
			if err != nil && !os.IsNotExist(err) {
				return err
			}
		}
		log.Debugf("removed %s", j.Tmp)
	}
	return nil
}
