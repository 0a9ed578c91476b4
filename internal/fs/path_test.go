package fs

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"alice/files", "/alice/files"},
		{"/alice//files/", "/alice/files"},
		{"/alice/files/../files_trashbin", "/alice/files_trashbin"},
		{"/..", "/"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		cwd, p, want string
	}{
		{"/alice/files", "", "/alice/files"},
		{"/alice/files", "Photos", "/alice/files/Photos"},
		{"/alice/files", "../files_trashbin", "/alice/files_trashbin"},
		{"/alice/files", "/bob/files", "/bob/files"},
	}

	for _, tt := range tests {
		if got := ResolvePath(tt.cwd, tt.p); got != tt.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.cwd, tt.p, got, tt.want)
		}
	}
}

func TestIsUnder(t *testing.T) {
	tests := []struct {
		p, root string
		want    bool
	}{
		{"/alice/files/a.jpg", "/alice/files", true},
		{"/alice/files", "/alice/files", true},
		{"/alice/filesystem", "/alice/files", false},
		{"/bob/files", "/alice/files", false},
		{"/anything", "/", true},
	}

	for _, tt := range tests {
		if got := IsUnder(tt.p, tt.root); got != tt.want {
			t.Errorf("IsUnder(%q, %q) = %v, want %v", tt.p, tt.root, got, tt.want)
		}
	}
}

func TestUserFilesPath(t *testing.T) {
	tests := []struct {
		uid, rel, want string
	}{
		{"alice", "/a.jpg", "/alice/files/a.jpg"},
		{"alice", "Photos/b.jpg", "/alice/files/Photos/b.jpg"},
		{"alice", "/", "/alice/files"},
		{"alice", "", "/alice/files"},
		{"alice", "../../bob/files/x.jpg", "/alice/files/bob/files/x.jpg"},
	}

	for _, tt := range tests {
		if got := UserFilesPath(tt.uid, tt.rel); got != tt.want {
			t.Errorf("UserFilesPath(%q, %q) = %q, want %q", tt.uid, tt.rel, got, tt.want)
		}
	}
}

func TestRelativeToHome(t *testing.T) {
	tests := []struct {
		uid, p string
		want   string
		wantOK bool
	}{
		{"alice", "/alice/files/Photos/a.jpg", "/Photos/a.jpg", true},
		{"alice", "/alice/files", "/", true},
		{"alice", "/alice/files_trashbin/files/a.jpg.d1", "", false},
		{"alice", "/bob/files/a.jpg", "", false},
	}

	for _, tt := range tests {
		got, ok := RelativeToHome(tt.uid, tt.p)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("RelativeToHome(%q, %q) = %q, %v, want %q, %v", tt.uid, tt.p, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestOwnerOf(t *testing.T) {
	tests := []struct {
		p, want string
	}{
		{"/", ""},
		{"/alice", "alice"},
		{"/alice/files/a.jpg", "alice"},
	}

	for _, tt := range tests {
		if got := OwnerOf(tt.p); got != tt.want {
			t.Errorf("OwnerOf(%q) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestStorageKindFor(t *testing.T) {
	mounts := map[string]StorageKind{
		"/alice/files/ext":        StorageExternal,
		"/alice/files/ext/shared": StorageShared,
	}
	tests := []struct {
		p    string
		want StorageKind
	}{
		{"/", StorageRoot},
		{"/alice/files/a.jpg", StorageHome},
		{"/alice/files/ext", StorageExternal},
		{"/alice/files/ext/a.jpg", StorageExternal},
		{"/alice/files/ext/shared/a.jpg", StorageShared},
		{"/alice/files/extra/a.jpg", StorageHome},
	}

	for _, tt := range tests {
		if got := storageKindFor(tt.p, mounts); got != tt.want {
			t.Errorf("storageKindFor(%q) = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestTrashNames(t *testing.T) {
	name := trashName("a.jpg", 1700000000)
	if name != "a.jpg.d1700000000" {
		t.Fatalf("trashName = %q", name)
	}
	if got := deletedAt(name); got != 1700000000 {
		t.Errorf("deletedAt(%q) = %d", name, got)
	}
	if got := deletedAt("plain"); got != 0 {
		t.Errorf("deletedAt(plain) = %d, want 0", got)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		meta Metadata
		want string
	}{
		{Metadata{Type: TypeDir, Mode: "0755"}, "drwxr-xr-x"},
		{Metadata{Type: TypeFile, Mode: "0644"}, "-rw-r--r--"},
		{Metadata{Type: TypeFile, Mode: "bogus"}, "-rwxr-xr-x"},
	}

	for _, tt := range tests {
		if got := tt.meta.ModeString(); got != tt.want {
			t.Errorf("ModeString(%s) = %q, want %q", tt.meta.Mode, got, tt.want)
		}
	}
}
