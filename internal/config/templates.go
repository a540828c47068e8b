package config

// GetFullConfigTemplate returns a documented qgate.yaml with all options
func GetFullConfigTemplate() string {
	return `# qgate configuration
# All options are optional; omitted keys fall back to built-in defaults.
# Unknown keys are ignored.

# Treat an overall fail as warning (the build still succeeds)
ignoreFailures: false

# Record analyzers whose tool is missing as "skipped" instead of "error"
skipUnavailableAnalyzers: true

# Static analysis tools
static:
  enabled: true
  checkstyle:
    enabled: true
    # configFile: config/checkstyle/checkstyle.xml
    timeoutSeconds: 300
  pmd:
    enabled: true
    # ruleset: config/pmd/ruleset.xml
    timeoutSeconds: 300
  spotbugs:
    enabled: true
    # excludeFile: config/spotbugs/exclude.xml
    timeoutSeconds: 300

# Coverage
coverage:
  enabled: true
  # Warn when line coverage falls below this percentage (0 = no gate)
  minimum: 0
  jacoco:
    enabled: true
    # reportFile: build/reports/jacoco/test/jacocoTestReport.csv

# Architecture rules
archunit:
  enabled: true
  # rulesJar: build/libs/arch-rules.jar

# AI review
ai:
  enabled: true
  gemini:
    enabled: true
    command: gemini
    guidesDir: qa/guides
    timeoutSeconds: 600

# Report artifacts
reports:
  html:
    enabled: true
  json:
    enabled: true
  markdown:
    enabled: true

# Execution tuning
performance:
  # Run independent analyzers concurrently (report order stays deterministic)
  parallel: false
  maxConcurrency: 4

# Persist run summaries for trend queries (qgate history)
history:
  enabled: false
  # path: /custom/path/qgate.db
`
}

// GetMinimalConfigTemplate returns a short qgate.yaml with the options most
// projects end up touching
func GetMinimalConfigTemplate() string {
	return `# qgate configuration (minimal)
ignoreFailures: false
skipUnavailableAnalyzers: true

static:
  enabled: true
coverage:
  enabled: true
  minimum: 0
archunit:
  enabled: true
ai:
  enabled: true

reports:
  html:
    enabled: true
  json:
    enabled: true
`
}
