package runtime

import (
	goruntime "runtime"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

const testContainerID = "19cd7a809d879d9c855bb93e4d399efe795a769ac856faaa5256cdd8387fe4b1"

func noEnv(string) string { return "" }

func TestDetectContainer(t *testing.T) {
	testcases := []struct {
		name    string
		root    fstest.MapFS
		getenv  func(string) string
		runtime string
		kube    bool
		id      string
	}{
		{
			name: "bare host",
			root: fstest.MapFS{
				procSelfCgroup:    {Data: []byte("0::/user.slice/user-1000.slice/session-2.scope\n")},
				procSelfMountInfo: {Data: []byte("22 1 259:2 / / rw,relatime - ext4 /dev/nvme0n1p2 rw\n")},
			},
			getenv: noEnv,
		},
		{
			name: "kubernetes containerd cgroup v2",
			root: fstest.MapFS{
				procSelfCgroup: {Data: []byte("0::/kubepods.slice/kubepods-besteffort.slice/" +
					"kubepods-besteffort-pode6ac4a8d_1076_453e_9ddb_3976520e3178.slice/" +
					"cri-containerd-" + testContainerID + ".scope\n")},
			},
			getenv:  noEnv,
			runtime: "containerd",
			kube:    true,
			id:      testContainerID,
		},
		{
			name: "docker cgroup v1",
			root: fstest.MapFS{
				procSelfCgroup: {Data: []byte("12:pids:/docker/" + testContainerID + "\n" +
					"11:memory:/docker/" + testContainerID + "\n")},
				dockerEnvFile: {Data: []byte{}},
			},
			getenv:  noEnv,
			runtime: "docker",
			id:      testContainerID,
		},
		{
			name: "docker private cgroup namespace",
			root: fstest.MapFS{
				procSelfCgroup: {Data: []byte("0::/\n")},
				procSelfMountInfo: {Data: []byte(
					"22 1 0:44 / / rw,relatime - overlay overlay rw\n" +
						"612 22 259:2 /var/lib/docker/containers/" + testContainerID +
						"/hostname /etc/hostname rw,relatime - ext4 /dev/nvme0n1p2 rw\n")},
				dockerEnvFile: {Data: []byte{}},
			},
			getenv:  noEnv,
			runtime: "docker",
			id:      testContainerID,
		},
		{
			name: "kubernetes service account only",
			root: fstest.MapFS{
				k8sNamespaceFile: {Data: []byte("default\n")},
			},
			getenv: noEnv,
			kube:   true,
		},
		{
			name: "kubernetes service env",
			root: fstest.MapFS{},
			getenv: func(key string) string {
				if key == k8sServiceHostEnv {
					return "10.96.0.1"
				}
				return ""
			},
			kube: true,
		},
		{
			name: "podman",
			root: fstest.MapFS{
				containerEnvFile: {Data: []byte("engine=\"podman\"\n")},
			},
			getenv:  noEnv,
			runtime: "podman",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			env := Env{}
			require.NoError(tt, detectContainer(tc.root, tc.getenv, &env))
			require.Equal(tt, tc.runtime, env.ContainerRuntime)
			require.Equal(tt, tc.kube, env.Kubernetes)
			require.Equal(tt, tc.id, env.ContainerID)
			require.Equal(tt, tc.runtime != "" || tc.kube || tc.id != "", env.Containerized)
		})
	}
}

func TestDetectContainerUnreadable(t *testing.T) {
	// a directory where a file is expected
	root := fstest.MapFS{
		procSelfCgroup + "/x": {Data: []byte("0::/\n")},
	}
	env := Env{}
	err := detectContainer(root, noEnv, &env)
	require.Error(t, err)
	require.Contains(t, err.Error(), "[runtime] read /"+procSelfCgroup)
	require.False(t, env.Containerized)
}

func TestIsContainerID(t *testing.T) {
	require.True(t, isContainerID(testContainerID))
	require.False(t, isContainerID(testContainerID[:63]))
	require.False(t, isContainerID("19CD"+testContainerID[4:]))
	require.False(t, isContainerID("e6ac4a8d_1076_453e_9ddb_3976520e3178"))
}

func TestDetectEnv(t *testing.T) {
	env, err := DetectEnv()
	if err != nil {
		t.Logf("partial env: %v", err)
	}
	require.Equal(t, goruntime.GOOS, env.OS)
	require.Equal(t, goruntime.GOARCH, env.Arch)
	require.Positive(t, env.MaxProcs)
	require.Equal(t, "env", env.Field().Key)
	if env.ContainerID != "" {
		require.True(t, env.Containerized)
	}
}
