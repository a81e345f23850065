package runtime

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	goruntime "runtime"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xstl/lib/infra"
)

// Env describes where the bench process runs. The numbers of a run
// inside a throttled container are not comparable with the bare ones.
type Env struct {
	OS               string
	Arch             string
	GoVersion        string
	MaxProcs         int
	Containerized    bool
	ContainerRuntime string
	Kubernetes       bool
	ContainerID      string
}

// Paths relative to the host root.
const (
	dockerEnvFile       = ".dockerenv"
	containerEnvFile    = "run/.containerenv"
	procSelfCgroup      = "proc/self/cgroup"
	procSelfMountInfo   = "proc/self/mountinfo"
	k8sNamespaceFile    = "var/run/secrets/kubernetes.io/serviceaccount/namespace"
	k8sServiceHostEnv   = "KUBERNETES_SERVICE_HOST"
	containerIDHexLen   = 64
	mountInfoContainers = "/containers/"
)

// Prefixes of the cgroup scope names, e.g. "cri-containerd-<id>.scope".
var scopeRuntimes = []struct {
	prefix  string
	runtime string
}{
	{"cri-containerd-", "containerd"},
	{"docker-", "docker"},
	{"crio-", "cri-o"},
	{"libpod-", "podman"},
}

// Parent cgroup directories of the cgroup v1 layouts, e.g. "/docker/<id>".
var parentRuntimes = map[string]string{
	"docker": "docker",
	"libpod": "podman",
	"crio":   "cri-o",
}

// DetectEnv never fails the detection as a whole. The returned error
// collects the host files that exist but cannot be read.
func DetectEnv() (Env, error) {
	env := Env{
		OS:        goruntime.GOOS,
		Arch:      goruntime.GOARCH,
		GoVersion: goruntime.Version(),
		MaxProcs:  goruntime.GOMAXPROCS(0),
	}
	if goruntime.GOOS != "linux" {
		return env, nil
	}
	err := detectContainer(os.DirFS("/"), os.Getenv, &env)
	return env, err
}

func detectContainer(root fs.FS, getenv func(string) string, env *Env) error {
	var merr error
	readFile := func(name string) []byte {
		data, err := fs.ReadFile(root, name)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(err, "[runtime] read /"+name))
		}
		return data
	}

	if cgroup := readFile(procSelfCgroup); len(cgroup) > 0 {
		id, rt, kube := parseCgroup(cgroup)
		env.ContainerID, env.ContainerRuntime = id, rt
		env.Kubernetes = kube
	}
	if env.ContainerID == "" {
		// cgroup v2 with a private namespace shows "0::/" only.
		if mountInfo := readFile(procSelfMountInfo); len(mountInfo) > 0 {
			env.ContainerID = parseMountInfo(mountInfo)
		}
	}
	if env.ContainerRuntime == "" {
		if isRegularFile(root, dockerEnvFile) {
			env.ContainerRuntime = "docker"
		} else if isRegularFile(root, containerEnvFile) {
			env.ContainerRuntime = "podman"
		}
	}
	if !env.Kubernetes {
		env.Kubernetes = getenv(k8sServiceHostEnv) != "" ||
			len(bytes.TrimSpace(readFile(k8sNamespaceFile))) > 0
	}
	env.Containerized = env.Kubernetes || env.ContainerID != "" || env.ContainerRuntime != ""
	return merr
}

func isRegularFile(root fs.FS, name string) bool {
	info, err := fs.Stat(root, name)
	return err == nil && info.Mode().IsRegular()
}

// parseCgroup reads the "hierarchy:controllers:path" lines.
func parseCgroup(data []byte) (id, rt string, kube bool) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.SplitN(scanner.Text(), ":", 3)
		if len(fields) != 3 {
			continue
		}
		segments := strings.Split(strings.Trim(fields[2], "/"), "/")
		for _, seg := range segments {
			if strings.HasPrefix(seg, "kubepods") {
				kube = true
			}
		}
		last := strings.TrimSuffix(segments[len(segments)-1], ".scope")
		for _, sr := range scopeRuntimes {
			if cid, ok := strings.CutPrefix(last, sr.prefix); ok && isContainerID(cid) {
				return cid, sr.runtime, kube
			}
		}
		if isContainerID(last) && len(segments) > 1 {
			return last, parentRuntimes[segments[len(segments)-2]], kube
		}
	}
	return "", "", kube
}

// parseMountInfo finds the container of the bind-mounted hostname or
// resolv.conf, e.g. "/var/lib/docker/containers/<id>/hostname".
func parseMountInfo(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		_, rest, found := strings.Cut(fields[3], mountInfoContainers)
		if !found {
			continue
		}
		if cid, _, _ := strings.Cut(rest, "/"); isContainerID(cid) {
			return cid
		}
	}
	return ""
}

func isContainerID(s string) bool {
	if len(s) != containerIDHexLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func (e Env) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("os", e.OS)
	enc.AddString("arch", e.Arch)
	enc.AddString("go", e.GoVersion)
	enc.AddInt("maxProcs", e.MaxProcs)
	enc.AddBool("containerized", e.Containerized)
	if e.ContainerRuntime != "" {
		enc.AddString("containerRuntime", e.ContainerRuntime)
	}
	enc.AddBool("kubernetes", e.Kubernetes)
	if e.ContainerID != "" {
		enc.AddString("containerID", e.ContainerID)
	}
	return nil
}

func (e Env) Field() zap.Field {
	return zap.Object("env", e)
}
