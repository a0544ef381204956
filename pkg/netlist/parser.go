package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrSyntax marks malformed netlist lines.
var ErrSyntax = errors.New("netlist syntax error")

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisAC
	AnalysisDC
)

func (a AnalysisType) String() string {
	switch a {
	case AnalysisOP:
		return "OP"
	case AnalysisAC:
		return "AC"
	case AnalysisDC:
		return "DC"
	}
	return fmt.Sprintf("AnalysisType(%d)", int(a))
}

type NetlistData struct {
	Title    string
	Elements []Element        // Top-level circuit elements
	Subckts  []Subckt         // Subcircuit definitions in file order
	Models   map[string]Model // Model cards
	Analyses []AnalysisType   // Requested analyses in file order
	ACParam  struct {
		Sweep  string  // DEC, OCT, LIN
		Points int     // points per decade/octave, or total for LIN
		FStart float64 // start frequency
		FStop  float64 // stop frequency
	}
	DCParam struct {
		Sweeps []DCSweep // one or two sources, outer first
	}
	Prints []Print
}

type DCSweep struct {
	Source    string
	Start     float64
	Stop      float64
	Increment float64
}

type Subckt struct {
	Name     string
	Nodes    []string // External terminals
	Elements []Element
}

type Model struct {
	Type   string
	Name   string
	Params map[string]float64
}

// Print is one .PRINT request: raw probe strings such as V(2), VM(2,3) or
// IDB(V1).
type Print struct {
	Analysis AnalysisType
	Probes   []string
}

type Element struct {
	Type   string            // Part type (R, L, C, V, etc.)
	Name   string            // Part name
	Nodes  []string          // Node names
	Value  float64           // Part value, DC value of sources, gain of controlled sources
	Params map[string]string // Parameter values
}

var unitMap = map[string]float64{
	"t":   1e12,  // tera
	"g":   1e9,   // giga
	"meg": 1e6,   // mega
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valueRe = regexp.MustCompile(`(?i)^([-+]?\d*\.?\d+(?:e[-+]?\d+)?)(meg|[tgkmunpf])?[a-z]*$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

type parser struct {
	data *NetlistData
	sub  *Subckt // open .SUBCKT, nil at top level
	done bool
}

func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	p := &parser{data: &NetlistData{Models: make(map[string]Model)}}

	// Title or comment
	if scanner.Scan() {
		p.data.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	var currentLine string
	lineNo := 1
	startLine := 1

	flush := func() error {
		if currentLine == "" {
			return nil
		}
		err := p.parseLine(currentLine)
		currentLine = ""
		if err != nil {
			return fmt.Errorf("line %d: %w", startLine, err)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Inline comments
		if idx := strings.IndexAny(line, "*;"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if len(line) == 0 {
			continue
		}

		// Line continuation
		if strings.HasPrefix(line, "+") {
			if currentLine == "" {
				return nil, fmt.Errorf("line %d: %w: continuation without a line", lineNo, ErrSyntax)
			}
			currentLine += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		if p.done {
			break
		}
		currentLine = line
		startLine = lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if p.sub != nil {
		return nil, fmt.Errorf("%w: .SUBCKT %s is not closed", ErrSyntax, p.sub.Name)
	}
	return p.data, nil
}

func (p *parser) parseLine(line string) error {
	line = spaceRe.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return p.parseDotOperator(line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}

	if p.sub != nil {
		p.sub.Elements = append(p.sub.Elements, *element)
	} else {
		p.data.Elements = append(p.data.Elements, *element)
	}
	return nil
}

// Parse .op, .ac, .dc, .model, .print, .subckt, .ends, .end
func (p *parser) parseDotOperator(line string) error {
	var err error

	fields := strings.Fields(line)
	data := p.data

	switch strings.ToLower(fields[0]) {
	case ".model":
		return parseModel(data, fields[1:])

	case ".subckt":
		if p.sub != nil {
			return fmt.Errorf("%w: nested .SUBCKT %s inside %s", ErrSyntax, strings.Join(fields[1:2], ""), p.sub.Name)
		}
		if len(fields) < 3 {
			return fmt.Errorf("%w: .SUBCKT needs a name and at least one node", ErrSyntax)
		}
		p.sub = &Subckt{Name: fields[1], Nodes: fields[2:]}

	case ".ends":
		if p.sub == nil {
			return fmt.Errorf("%w: .ENDS without .SUBCKT", ErrSyntax)
		}
		if len(fields) > 1 && !strings.EqualFold(fields[1], p.sub.Name) {
			return fmt.Errorf("%w: .ENDS %s closes %s", ErrSyntax, fields[1], p.sub.Name)
		}
		data.Subckts = append(data.Subckts, *p.sub)
		p.sub = nil

	case ".end":
		p.done = true

	case ".op":
		data.Analyses = append(data.Analyses, AnalysisOP)

	case ".ac":
		if len(fields) != 5 {
			return fmt.Errorf("%w: .AC needs sweep type, points, fstart and fstop", ErrSyntax)
		}

		// DEC, OCT, LIN
		data.ACParam.Sweep = strings.ToUpper(fields[1])
		if data.ACParam.Sweep != "DEC" && data.ACParam.Sweep != "OCT" && data.ACParam.Sweep != "LIN" {
			return fmt.Errorf("%w: invalid sweep type %s", ErrSyntax, fields[1])
		}

		data.ACParam.Points, err = strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("%w: invalid points number %s", ErrSyntax, fields[2])
		}
		data.ACParam.FStart, err = ParseValue(fields[3])
		if err != nil {
			return fmt.Errorf("invalid fstart: %w", err)
		}
		data.ACParam.FStop, err = ParseValue(fields[4])
		if err != nil {
			return fmt.Errorf("invalid fstop: %w", err)
		}
		data.Analyses = append(data.Analyses, AnalysisAC)

	case ".dc":
		if len(fields) != 5 && len(fields) != 9 {
			return fmt.Errorf("%w: .DC needs one or two source start stop increment groups", ErrSyntax)
		}

		data.DCParam.Sweeps = data.DCParam.Sweeps[:0]
		for i := 1; i < len(fields); i += 4 {
			sweep := DCSweep{Source: fields[i]}
			if sweep.Start, err = ParseValue(fields[i+1]); err != nil {
				return fmt.Errorf("invalid start value: %w", err)
			}
			if sweep.Stop, err = ParseValue(fields[i+2]); err != nil {
				return fmt.Errorf("invalid stop value: %w", err)
			}
			if sweep.Increment, err = ParseValue(fields[i+3]); err != nil {
				return fmt.Errorf("invalid increment value: %w", err)
			}
			data.DCParam.Sweeps = append(data.DCParam.Sweeps, sweep)
		}
		data.Analyses = append(data.Analyses, AnalysisDC)

	case ".print":
		if len(fields) < 3 {
			return fmt.Errorf("%w: .PRINT needs an analysis type and probes", ErrSyntax)
		}
		var analysis AnalysisType
		switch strings.ToUpper(fields[1]) {
		case "DC":
			analysis = AnalysisDC
		case "AC":
			analysis = AnalysisAC
		case "OP":
			analysis = AnalysisOP
		default:
			return fmt.Errorf("%w: unsupported .PRINT type %s", ErrSyntax, fields[1])
		}
		data.Prints = append(data.Prints, Print{Analysis: analysis, Probes: splitProbes(fields[2:])})

	case ".tran":
		return fmt.Errorf("%w: transient analysis is not supported", ErrSyntax)

	default:
		return fmt.Errorf("%w: unsupported control line %s", ErrSyntax, fields[0])
	}

	return nil
}

// splitProbes rejoins probes such as "V(1," "2)" that whitespace split.
func splitProbes(fields []string) []string {
	joined := strings.Join(fields, " ")
	var probes []string
	depth := 0
	start := 0
	for i, r := range joined {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ' ':
			if depth == 0 {
				if s := strings.ReplaceAll(joined[start:i], " ", ""); s != "" {
					probes = append(probes, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.ReplaceAll(joined[start:], " ", ""); s != "" {
		probes = append(probes, s)
	}
	return probes
}

func parseModel(data *NetlistData, fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("%w: insufficient model parameters", ErrSyntax)
	}

	modelName := fields[0]

	// Split type from an attached "(": D(IS=1e-14
	rest := strings.Join(fields[1:], " ")
	rest = strings.ReplaceAll(rest, "(", " ")
	rest = strings.ReplaceAll(rest, ")", " ")
	words := strings.Fields(rest)

	modelType := strings.ToUpper(words[0])
	if modelType != "D" {
		return fmt.Errorf("%w: unsupported model type %s", ErrSyntax, words[0])
	}

	params := make(map[string]float64)
	for _, pair := range words[1:] {
		parts := strings.Split(pair, "=")
		if len(parts) != 2 {
			return fmt.Errorf("%w: malformed model parameter %s", ErrSyntax, pair)
		}

		paramName := strings.ToLower(strings.TrimSpace(parts[0]))
		value, err := ParseValue(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("invalid parameter value %s: %w", pair, err)
		}
		params[paramName] = value
	}

	data.Models[modelName] = Model{
		Type:   modelType,
		Name:   modelName,
		Params: params,
	}

	return nil
}

// Parse circuit element
func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: invalid element format: %s", ErrSyntax, line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(string(fields[0][0])),
		Params: make(map[string]string),
	}

	var err error
	switch elem.Type {
	case "R", "L", "C":
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: %s needs two nodes and a value", ErrSyntax, elem.Name)
		}
		elem.Nodes = fields[1:3]
		if elem.Value, err = ParseValue(fields[3]); err != nil {
			return nil, err
		}

	case "V", "I":
		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: insufficient source parameters for %s", ErrSyntax, elem.Name)
		}
		elem.Nodes = fields[1:3]
		if err := parseSourceValue(elem, fields[3:]); err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}

	case "E", "G":
		if len(fields) != 6 {
			return nil, fmt.Errorf("%w: %s needs four nodes and a gain", ErrSyntax, elem.Name)
		}
		elem.Nodes = fields[1:5]
		if elem.Value, err = ParseValue(fields[5]); err != nil {
			return nil, err
		}

	case "F", "H":
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: %s needs two nodes, a controlling source and a gain", ErrSyntax, elem.Name)
		}
		elem.Nodes = fields[1:3]
		elem.Params["control"] = fields[3]
		if elem.Value, err = ParseValue(fields[4]); err != nil {
			return nil, err
		}

	case "D":
		if len(fields) > 4 {
			return nil, fmt.Errorf("%w: %s needs two nodes and an optional model", ErrSyntax, elem.Name)
		}
		elem.Nodes = fields[1:3]
		if len(fields) == 4 {
			elem.Params["model"] = fields[3]
		}

	case "X":
		elem.Nodes = fields[1 : len(fields)-1]
		elem.Params["subckt"] = fields[len(fields)-1]

	default:
		return nil, fmt.Errorf("%w: unsupported element %s", ErrSyntax, elem.Name)
	}

	return elem, nil
}

// parseSourceValue reads "v", "DC v", "DC v AC [mag [phase]]" and
// "AC [mag [phase]]".
func parseSourceValue(elem *Element, words []string) error {
	var err error
	i := 0
	if v, perr := ParseValue(words[0]); perr == nil {
		elem.Value = v
		i = 1
	}

	for i < len(words) {
		switch strings.ToUpper(words[i]) {
		case "DC":
			if i+1 >= len(words) {
				return fmt.Errorf("%w: missing DC value", ErrSyntax)
			}
			if elem.Value, err = ParseValue(words[i+1]); err != nil {
				return err
			}
			i += 2

		case "AC":
			elem.Params["acmag"] = "1"
			elem.Params["acphase"] = "0"
			i++
			if i < len(words) && isValue(words[i]) {
				elem.Params["acmag"] = words[i]
				i++
				if i < len(words) && isValue(words[i]) {
					elem.Params["acphase"] = words[i]
					i++
				}
			}

		default:
			return fmt.Errorf("%w: unsupported source specification %s", ErrSyntax, words[i])
		}
	}
	return nil
}

func isValue(s string) bool {
	_, err := ParseValue(s)
	return err == nil
}

// ParseValue - Parse value and factor. 1k -> 1000, 2.2MEG -> 2.2e6, 10uF -> 1e-5
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("%w: invalid value format: %s", ErrSyntax, val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	// factor
	if matches[2] != "" {
		num *= unitMap[strings.ToLower(matches[2])]
	}

	return num, nil
}
