// Package resolver fills configuration gaps by inspecting the project on
// disk. It is consulted only when an explicit configuration value is absent;
// precedence is always explicit config > auto-detected > built-in default.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	ignore "github.com/sabhiram/go-gitignore"
)

// BuildSystem identifies the project's build tool
type BuildSystem string

const (
	BuildSystemMaven   BuildSystem = "maven"
	BuildSystemGradle  BuildSystem = "gradle"
	BuildSystemUnknown BuildSystem = "unknown"
)

// ProjectInfo holds metadata detected from the project snapshot
type ProjectInfo struct {
	// Name is the project directory name
	Name string

	// BuildSystem is the detected build tool
	BuildSystem BuildSystem

	// Revision is the current VCS commit hash, empty outside a repository
	Revision string

	// Branch is the current VCS branch name, empty outside a repository
	Branch string
}

// Detect inspects the project root and returns best-effort metadata.
// Detection never fails: fields that cannot be determined stay empty.
func Detect(projectRoot string) ProjectInfo {
	info := ProjectInfo{
		Name:        filepath.Base(projectRoot),
		BuildSystem: detectBuildSystem(projectRoot),
	}

	if repo, err := git.PlainOpenWithOptions(projectRoot, &git.PlainOpenOptions{DetectDotGit: true}); err == nil {
		if head, err := repo.Head(); err == nil {
			info.Revision = head.Hash().String()
			if head.Name().IsBranch() {
				info.Branch = head.Name().Short()
			}
		}
	}

	return info
}

func detectBuildSystem(projectRoot string) BuildSystem {
	if fileExists(filepath.Join(projectRoot, "pom.xml")) {
		return BuildSystemMaven
	}
	if fileExists(filepath.Join(projectRoot, "build.gradle")) ||
		fileExists(filepath.Join(projectRoot, "build.gradle.kts")) {
		return BuildSystemGradle
	}
	return BuildSystemUnknown
}

// defaultReportFiles maps tool name to the report location each build system
// writes by convention
var defaultReportFiles = map[BuildSystem]map[string]string{
	BuildSystemMaven: {
		"checkstyle": "target/checkstyle-result.xml",
		"pmd":        "target/pmd.xml",
		"spotbugs":   "target/spotbugsXml.xml",
		"jacoco":     "target/site/jacoco/jacoco.csv",
	},
	BuildSystemGradle: {
		"checkstyle": "build/reports/checkstyle/main.xml",
		"pmd":        "build/reports/pmd/main.xml",
		"spotbugs":   "build/reports/spotbugs/main.xml",
		"jacoco":     "build/reports/jacoco/test/jacocoTestReport.csv",
	},
}

// ResolveReportFile returns the report path for a tool: the explicit
// configuration value when present, otherwise the build-system convention.
// The returned path is absolute.
func ResolveReportFile(explicit, projectRoot string, bs BuildSystem, tool string) string {
	if explicit != "" {
		if filepath.IsAbs(explicit) {
			return explicit
		}
		return filepath.Join(projectRoot, explicit)
	}
	if byTool, ok := defaultReportFiles[bs]; ok {
		if rel, ok := byTool[tool]; ok {
			return filepath.Join(projectRoot, rel)
		}
	}
	// Unknown build system: try both conventions, prefer whichever exists
	for _, candidate := range []BuildSystem{BuildSystemGradle, BuildSystemMaven} {
		if rel, ok := defaultReportFiles[candidate][tool]; ok {
			path := filepath.Join(projectRoot, rel)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

// detailReportLinks maps tool name to the HTML report each tool publishes
// alongside its machine-readable output. Tools present here show warnings
// through their own report rather than inline in the aggregate HTML.
var detailReportLinks = map[string]map[BuildSystem]string{
	"checkstyle": {
		BuildSystemMaven:  "target/site/checkstyle.html",
		BuildSystemGradle: "build/reports/checkstyle/main.html",
	},
	"pmd": {
		BuildSystemMaven:  "target/site/pmd.html",
		BuildSystemGradle: "build/reports/pmd/main.html",
	},
	"spotbugs": {
		BuildSystemMaven:  "target/site/spotbugs.html",
		BuildSystemGradle: "build/reports/spotbugs/main.html",
	},
	"jacoco": {
		BuildSystemMaven:  "target/site/jacoco/index.html",
		BuildSystemGradle: "build/reports/jacoco/test/html/index.html",
	},
}

// DetailReportLink returns the relative path of the tool's own HTML report,
// or empty when the tool publishes none
func DetailReportLink(tool string, bs BuildSystem) string {
	byBS, ok := detailReportLinks[tool]
	if !ok {
		return ""
	}
	if link, ok := byBS[bs]; ok {
		return link
	}
	return byBS[BuildSystemGradle]
}

// SourceFiles walks the project tree and returns files with any of the given
// extensions, honoring .gitignore patterns and skipping VCS and build output
// directories.
func SourceFiles(projectRoot string, extensions []string) ([]string, error) {
	var matcher *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(projectRoot, ".gitignore")); err == nil {
		matcher = gi
	}

	skipDirs := map[string]bool{
		".git": true, ".hg": true, "node_modules": true,
		"target": true, "build": true, "out": true,
	}

	var files []string
	err := filepath.Walk(projectRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(projectRoot, path)
		if relErr != nil {
			return relErr
		}
		if info.IsDir() {
			if skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			if matcher != nil && rel != "." && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		for _, ext := range extensions {
			if strings.HasSuffix(path, ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
