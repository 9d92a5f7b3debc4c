package service

import (
	"errors"
	"testing"
)

func TestAccessURLBuilderHTTPS(t *testing.T) {
	b := NewAccessURLBuilder("files.example.org")

	tests := []struct {
		name        string
		storagePath string
		want        string
	}{
		{
			name:        "обычный путь",
			storagePath: "ns/internal-7/datasets/ds-1/reads.fastq.gz",
			want:        "https://files.example.org/datasets/ds-1/reads.fastq.gz",
		},
		{
			name:        "ведущий слеш игнорируется",
			storagePath: "/ns/internal-7/data.bin",
			want:        "https://files.example.org/data.bin",
		},
		{
			name:        "ровно три сегмента",
			storagePath: "a/b/c",
			want:        "https://files.example.org/c",
		},
		{
			name:        "два сегмента - URL не строится",
			storagePath: "ns/internal-7",
			want:        "",
		},
		{
			name:        "один сегмент",
			storagePath: "data.bin",
			want:        "",
		},
		{
			name:        "пустой путь",
			storagePath: "",
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build("https", tt.storagePath)
			if err != nil {
				t.Fatalf("Build ошибка: %v", err)
			}
			if got != tt.want {
				t.Errorf("Build(%q) = %q, ожидалось %q", tt.storagePath, got, tt.want)
			}
		})
	}
}

func TestAccessURLBuilderUnsupported(t *testing.T) {
	b := NewAccessURLBuilder("files.example.org")

	_, err := b.Build("ftp", "a/b/c")
	if !errors.Is(err, ErrUnsupportedAccessMethod) {
		t.Errorf("Build(ftp) ошибка = %v, ожидалась ErrUnsupportedAccessMethod", err)
	}

	if b.Supported("ftp") {
		t.Error("Supported(ftp) = true, ожидалось false")
	}
	if !b.Supported("https") {
		t.Error("Supported(https) = false, ожидалось true")
	}
}
