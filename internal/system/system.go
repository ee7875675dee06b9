package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// AssetExtensions - форматы иконки, которые умеет читать source.
var AssetExtensions = []string{".svg", ".pdf"}

// AudioExtensions - форматы фоновой музыки.
var AudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// FindLatestAsset возвращает самый свежий SVG или PDF в папке.
func FindLatestAsset(dir string) (string, error) {
	path, err := findLatest(dir, AssetExtensions)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов иконки (svg, pdf)", dir)
	}
	return path, nil
}

// FindLatestAudio возвращает самый свежий аудио-файл в папке.
func FindLatestAudio(dir string) (string, error) {
	path, err := findLatest(dir, AudioExtensions)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("в папке %s не найдено аудио-файлов", dir)
	}
	return path, nil
}

func findLatest(dir string, extensions []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time
	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}
	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ResolveInput разворачивает папку в самый свежий файл нужного типа. Файлы и пустой путь возвращаются как есть.
func ResolveInput(path string, find func(string) (string, error)) (string, error) {
	if path == "" {
		return "", nil
	}
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return path, nil
	}
	return find(path)
}

// ResolveAsset выбирает иконку. Пустой путь ищется в dflt, папка разворачивается в самый свежий файл.
// Если файла нет, путь возвращается как есть, и сцена уходит в заглушку.
func ResolveAsset(path, dflt string) string {
	if path == "" {
		latest, err := FindLatestAsset(dflt)
		if err != nil {
			return ""
		}
		fmt.Printf("[*] Выбран файл: %s\n", latest)
		return latest
	}
	resolved, err := ResolveInput(path, FindLatestAsset)
	if err != nil {
		log.Printf("[!] %v: будет показана заглушка", err)
		return path
	}
	return resolved
}

// GetBestH264Encoder выбирает аппаратный энкодер, если ffmpeg его поддерживает.
func GetBestH264Encoder() string {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(encoders string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(encoders, name) {
			return name
		}
	}
	return "libx264"
}

// GetAudioDuration возвращает длительность аудио через ffprobe.
func GetAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, err
	}
	return duration, nil
}
