package dto

// Manifest is the on-disk description of a workspace.
// It uses "mapstructure" tags for decoding and "yaml" tags for writing back.
type Manifest struct {
	Projects []Project `yaml:"projects" mapstructure:"projects"`
}

type Project struct {
	Name       string     `yaml:"name" mapstructure:"name"`
	References []string   `yaml:"references,omitempty" mapstructure:"references"`
	Documents  []Document `yaml:"documents,omitempty" mapstructure:"documents"`
}

type Document struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Types []Type `yaml:"types,omitempty" mapstructure:"types"`
}

type Type struct {
	Name       string   `yaml:"name" mapstructure:"name"`
	Kind       string   `yaml:"kind,omitempty" mapstructure:"kind"`
	Base       string   `yaml:"base,omitempty" mapstructure:"base"`
	Interfaces []string `yaml:"interfaces,omitempty" mapstructure:"interfaces"`
	Partial    bool     `yaml:"partial,omitempty" mapstructure:"partial"`
	Members    []Member `yaml:"members,omitempty" mapstructure:"members"`
}

// Member holds exactly one of Method, Property or Field.
type Member struct {
	Method   *Method   `yaml:"method,omitempty" mapstructure:"method"`
	Property *Property `yaml:"property,omitempty" mapstructure:"property"`
	Field    *Field    `yaml:"field,omitempty" mapstructure:"field"`
}

type Method struct {
	Name      string   `yaml:"name" mapstructure:"name"`
	Modifiers []string `yaml:"modifiers,omitempty" mapstructure:"modifiers"`
	Params    []Param  `yaml:"params,omitempty" mapstructure:"params"`
	Returns   string   `yaml:"returns,omitempty" mapstructure:"returns"`
	// Abstract marks a signature without a body. Interface members are
	// always abstract.
	Abstract bool   `yaml:"abstract,omitempty" mapstructure:"abstract"`
	Body     []Stmt `yaml:"body,omitempty" mapstructure:"body"`
}

type Param struct {
	Name string `yaml:"name" mapstructure:"name"`
	Type string `yaml:"type" mapstructure:"type"`
}

type Property struct {
	Name      string   `yaml:"name" mapstructure:"name"`
	Type      string   `yaml:"type" mapstructure:"type"`
	Modifiers []string `yaml:"modifiers,omitempty" mapstructure:"modifiers"`
	Getter    []Stmt   `yaml:"getter,omitempty" mapstructure:"getter"`
}

type Field struct {
	Name      string   `yaml:"name" mapstructure:"name"`
	Type      string   `yaml:"type" mapstructure:"type"`
	Modifiers []string `yaml:"modifiers,omitempty" mapstructure:"modifiers"`
	Init      *Expr    `yaml:"init,omitempty" mapstructure:"init"`
}

// Stmt holds one of Call (shorthand for an expression statement), Return or
// Expr. An empty Return is a bare return.
type Stmt struct {
	Call   *Call `yaml:"call,omitempty" mapstructure:"call"`
	Return *Expr `yaml:"return,omitempty" mapstructure:"return"`
	Expr   *Expr `yaml:"expr,omitempty" mapstructure:"expr"`
}

type Expr struct {
	Call    *Call  `yaml:"call,omitempty" mapstructure:"call"`
	NameOf  string `yaml:"nameof,omitempty" mapstructure:"nameof"`
	Ident   string `yaml:"ident,omitempty" mapstructure:"ident"`
	Literal string `yaml:"literal,omitempty" mapstructure:"literal"`
	Await   *Expr  `yaml:"await,omitempty" mapstructure:"await"`
	Wait    *Expr  `yaml:"wait,omitempty" mapstructure:"wait"`
}

// Call invokes Target, which may be qualified (Repo.Load).
type Call struct {
	Target   string `yaml:"target" mapstructure:"target"`
	Args     []Expr `yaml:"args,omitempty" mapstructure:"args"`
	Leading  string `yaml:"leading,omitempty" mapstructure:"leading"`
	Trailing string `yaml:"trailing,omitempty" mapstructure:"trailing"`
}
