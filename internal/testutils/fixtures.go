package testutils

// ScenarioA: a parameterless function with no callers.
const ScenarioA = `
projects:
  - name: Core
    documents:
      - path: clock.src
        types:
          - name: Clock
            members:
              - method: {name: Tick, body: [{call: {target: Log, args: [{literal: '"tick"'}]}}]}
              - method: {name: Log, params: [{name: m, type: string}]}
      - path: other.src
        types:
          - name: Other
            members:
              - method: {name: Idle}
`

// ScenarioB: A.X is called from B.Y in a dependent project.
const ScenarioB = `
projects:
  - name: App
    references: [Core]
    documents:
      - path: app/b.src
        types:
          - name: B
            members:
              - method:
                  name: Y
                  body:
                    - call: {target: A.X, leading: "/* first */ ", trailing: " /* trailing */"}
  - name: Core
    documents:
      - path: core/a.src
        types:
          - name: A
            members:
              - method: {name: X}
`

// ScenarioC: A.X is only named, never invoked.
const ScenarioC = `
projects:
  - name: Core
    documents:
      - path: a.src
        types:
          - name: A
            members:
              - method: {name: X}
      - path: c.src
        types:
          - name: C
            members:
              - field: {name: Label, type: string, init: {nameof: A.X}}
              - method:
                  name: Describe
                  returns: string
                  body:
                    - return: {nameof: A.X}
`

// ScenarioD: A.Load is invoked from a property getter.
const ScenarioD = `
projects:
  - name: Core
    documents:
      - path: a.src
        types:
          - name: A
            members:
              - method: {name: Load, returns: int, body: [{return: {literal: 1}}]}
      - path: c.src
        types:
          - name: C
            members:
              - property:
                  name: Count
                  type: int
                  getter:
                    - return: {call: {target: A.Load}}
              - field: {name: Cached, type: int, init: {call: {target: A.Load}}}
`

// ScenarioE: A -> C -> B -> A.
const ScenarioE = `
projects:
  - name: Core
    documents:
      - path: loop.src
        types:
          - name: Loop
            members:
              - method: {name: A, body: [{call: {target: C}}]}
              - method: {name: B, body: [{call: {target: A}}]}
              - method: {name: C, body: [{call: {target: B}}]}
`

// Recursion: Fact calls itself.
const Recursion = `
projects:
  - name: Core
    documents:
      - path: math.src
        types:
          - name: MathUtil
            members:
              - method:
                  name: Fact
                  returns: int
                  params: [{name: n, type: int}]
                  body:
                    - return: {call: {target: Fact, args: [{ident: n}]}}
`

// Boundary: Repo.Load already has LoadAsync(string, CancellationToken) on
// its base class. Helper.Fetch is called from inside Repo.Load.
const Boundary = `
projects:
  - name: Core
    documents:
      - path: base.src
        types:
          - name: BaseRepo
            members:
              - method:
                  name: LoadAsync
                  returns: Task<int>
                  params: [{name: key, type: string}, {name: ct, type: CancellationToken}]
                  body: [{return: {literal: 0}}]
      - path: repo.src
        types:
          - name: Repo
            base: BaseRepo
            members:
              - method:
                  name: Load
                  returns: int
                  params: [{name: key, type: string}]
                  body:
                    - return: {call: {target: Helper.Fetch, args: [{ident: key}]}}
          - name: Helper
            members:
              - method:
                  name: Fetch
                  returns: int
                  params: [{name: key, type: string}]
                  body: [{return: {literal: 1}}]
      - path: caller.src
        types:
          - name: Caller
            members:
              - method:
                  name: Use
                  body:
                    - call: {target: Repo.Load, args: [{literal: '"k"'}]}
`

// Interfaces: Mem implements IStore; Svc calls through the interface.
const Interfaces = `
projects:
  - name: Core
    documents:
      - path: store.src
        types:
          - name: IStore
            kind: interface
            members:
              - method: {name: Get, returns: int}
          - name: Mem
            interfaces: [IStore]
            members:
              - method: {name: Get, returns: int, modifiers: [public], body: [{return: {literal: 1}}]}
      - path: svc.src
        types:
          - name: Svc
            members:
              - field: {name: store, type: IStore}
              - method:
                  name: Run
                  returns: int
                  body:
                    - return: {call: {target: store.Get}}
`

// Partial: Report is split over two documents, with a partial signature in
// the first and its implementation in the second.
const Partial = `
projects:
  - name: Core
    documents:
      - path: report.a.src
        types:
          - name: Report
            partial: true
            members:
              - method: {name: Render, abstract: true}
              - method: {name: Print, body: [{call: {target: Render}}]}
      - path: report.b.src
        types:
          - name: Report
            partial: true
            members:
              - method: {name: Render, body: [{call: {target: Flush}}]}
              - method: {name: Flush}
`

// Overloads: A.X has a string and an int overload of the same arity. B
// calls both, through literals, a parameter and a field.
const Overloads = `
projects:
  - name: Core
    documents:
      - path: a.src
        types:
          - name: A
            members:
              - method: {name: X, params: [{name: key, type: string}]}
              - method: {name: X, params: [{name: n, type: int}]}
      - path: b.src
        types:
          - name: B
            members:
              - field: {name: label, type: string}
              - method:
                  name: Y
                  body:
                    - call: {target: A.X, args: [{literal: '"k"'}]}
              - method:
                  name: Z
                  body:
                    - call: {target: A.X, args: [{literal: "1"}]}
              - method:
                  name: W
                  params: [{name: n, type: int}]
                  body:
                    - call: {target: A.X, args: [{ident: n}]}
              - method:
                  name: V
                  body:
                    - call: {target: A.X, args: [{ident: label}]}
`
