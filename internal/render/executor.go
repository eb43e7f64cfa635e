// Package render runs one rendering job end to end: it materializes
// the submitted script, drives the manim subprocess, classifies its
// output into progress messages, uploads the produced video, and
// reports completion.
package render

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"manimrunner/internal/notify"
	"manimrunner/internal/pkg/errors"
	"manimrunner/internal/pkg/logger"
	"manimrunner/internal/ports"
	"manimrunner/internal/stream"
)

const videoExt = ".mp4"

// commandSpec describes one renderer invocation. The factory indirection
// lets tests substitute the real binary.
type commandSpec struct {
	ScriptPath string
	Scene      string
	OutputName string
	MediaDir   string
	WorkDir    string
}

type commandFactory func(ctx context.Context, spec commandSpec) *exec.Cmd

// Deps carries everything the executor needs.
type Deps struct {
	Registry *stream.Registry
	Storage  ports.StorageProvider
	Notifier *notify.BestEffort
	Log      *logger.Logger

	// Binary and Scene default to "manim" and "ArchitectureDiagram".
	Binary string
	Scene  string
}

// Executor renders submitted scripts. Safe for concurrent use; each
// Execute call owns its scratch directory exclusively.
type Executor struct {
	registry *stream.Registry
	storage  ports.StorageProvider
	notifier *notify.BestEffort
	log      *logger.Logger
	scene    string

	newCommand commandFactory
}

func NewExecutor(d Deps) *Executor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	binary := d.Binary
	if binary == "" {
		binary = "manim"
	}
	scene := d.Scene
	if scene == "" {
		scene = "ArchitectureDiagram"
	}

	return &Executor{
		registry: d.Registry,
		storage:  d.Storage,
		notifier: d.Notifier,
		log:      log.WithComponent("executor"),
		scene:    scene,
		newCommand: func(ctx context.Context, spec commandSpec) *exec.Cmd {
			cmd := exec.CommandContext(ctx, binary,
				spec.ScriptPath,
				spec.Scene,
				"--format", "mp4",
				"-o", spec.OutputName,
				"--media_dir", spec.MediaDir,
				"-v", "INFO",
			)
			cmd.Dir = spec.WorkDir
			return cmd
		},
	}
}

// Execute renders the script and returns the public URL of the
// uploaded video. Whatever stage fails, exactly one terminal error
// message is published for the job before the error propagates.
func (e *Executor) Execute(ctx context.Context, jobID, code string, metadata map[string]any) (string, error) {
	log := e.log.FromContext(ctx).WithJobID(jobID)
	log.Info("starting video generation", "metadata_keys", len(metadata))

	url, err := e.run(ctx, log, jobID, code)
	if err != nil {
		log.Error("job failed", "error", err.Error())
		e.registry.Publish(jobID, stream.Errorf("%s", publicMessage(err)))
		return "", err
	}

	log.Info("job completed", "url", url)
	return url, nil
}

func (e *Executor) run(ctx context.Context, log *logger.Logger, jobID, code string) (string, error) {
	scratch, err := os.MkdirTemp("", "render-*")
	if err != nil {
		return "", errors.Wrap(err, "executor.scratch", "failed to create scratch directory")
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Warn("failed to clean up scratch directory", "path", scratch, "error", err.Error())
		}
	}()

	scriptPath := filepath.Join(scratch, jobID+".py")
	if err := os.WriteFile(scriptPath, []byte(code), 0o644); err != nil {
		return "", errors.Wrap(err, "executor.script", "failed to write script file")
	}

	mediaDir := filepath.Join(scratch, "media")
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return "", errors.Wrap(err, "executor.script", "failed to create output directory")
	}

	e.registry.Publish(jobID, stream.Progress("Starting video generation..."))

	cmd := e.newCommand(ctx, commandSpec{
		ScriptPath: scriptPath,
		Scene:      e.scene,
		OutputName: jobID + videoExt,
		MediaDir:   mediaDir,
		WorkDir:    scratch,
	})

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", errors.Wrap(err, "executor.start", "failed to open renderer output")
	}
	// Error output interleaves with progress output on one channel.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return "", errors.WrapWithCode(err, errors.CodeRenderFailed, "executor.start", "failed to start renderer")
	}

	// ReadString grows as needed, so a single huge output line (the
	// submitted script can print anything) cannot stall the read loop
	// and leave the child blocked on a full pipe.
	reader := bufio.NewReader(stdout)
	var readErr error
	for {
		line, err := reader.ReadString('\n')
		if trimmed := strings.TrimRight(line, "\r\n"); trimmed != "" {
			log.Debug("renderer output", "line", trimmed)
			if msg, ok := Classify(trimmed); ok {
				e.registry.Publish(jobID, stream.Progress(msg))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// Drain the pipe so the child can run to completion, then
			// surface the read failure after Wait.
			_, _ = io.Copy(io.Discard, stdout)
			readErr = err
			break
		}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", errors.Newf(errors.CodeRenderFailed, "renderer process failed with exit code %d", exitErr.ExitCode())
		}
		return "", errors.WrapWithCode(err, errors.CodeRenderFailed, "executor.wait", "renderer process failed")
	}
	if readErr != nil {
		return "", errors.WrapWithCode(readErr, errors.CodeRenderFailed, "executor.read", "failed to read renderer output")
	}

	artifact, ok := locateArtifact(mediaDir, scratch, jobID)
	if !ok {
		return "", errors.New(errors.CodeArtifactMissing, "no video file was generated")
	}
	log.Debug("found video file", "path", artifact)

	e.registry.Publish(jobID, stream.Progress("Uploading video..."))

	url, err := e.upload(ctx, jobID, artifact)
	if err != nil {
		return "", err
	}

	e.registry.Publish(jobID, stream.Completed())

	if e.notifier != nil {
		e.notifier.Notify(ctx, jobID, url)
	}

	return url, nil
}

func (e *Executor) upload(ctx context.Context, jobID, artifact string) (string, error) {
	f, err := os.Open(artifact)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeUploadFailed, "executor.upload", "failed to open video file")
	}
	defer f.Close()

	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}

	out, err := e.storage.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   jobID + videoExt,
		ContentType: "video/mp4",
		Reader:      f,
		Size:        size,
	})
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeUploadFailed, "executor.upload", "failed to upload video")
	}
	if out.URL == "" {
		return "", errors.New(errors.CodeUploadFailed, "storage provider returned no URL")
	}

	return out.URL, nil
}

// locateArtifact returns the first video file produced by the
// renderer: a walk over the media directory, then a fixed list of
// fallback locations the renderer is known to use.
func locateArtifact(mediaDir, workDir, jobID string) (string, bool) {
	var found string
	_ = filepath.WalkDir(mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), videoExt) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if found != "" {
		return found, true
	}

	name := jobID + videoExt
	fallbacks := []string{
		filepath.Join(workDir, name),
		filepath.Join(mediaDir, "videos", name),
		filepath.Join(mediaDir, "videos", "480p15", name),
		filepath.Join(mediaDir, "videos", "720p30", name),
		filepath.Join(mediaDir, "videos", "1080p60", name),
	}
	for _, candidate := range fallbacks {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

// publicMessage is the wire text published for a failed job. Coded
// errors publish their message without internal op/code noise.
func publicMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
