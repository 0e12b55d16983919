/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template of the batch report.
*/

package export

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Explorer Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            color: #333;
        }

        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }

        .card {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 20px;
            padding: 30px;
            margin-bottom: 30px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        h1 { color: #4a5568; font-size: 2.2rem; margin-bottom: 10px; }
        h2 { color: #4a5568; font-size: 1.4rem; margin-bottom: 15px; }
        .subtitle { color: #718096; }

        .stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 15px; }
        .stat { text-align: center; }
        .stat .value { font-size: 1.8rem; font-weight: 700; color: #667eea; }
        .stat .label { color: #718096; font-size: 0.9rem; }

        pre { background: #f7fafc; border-radius: 10px; padding: 15px; overflow-x: auto; }
        ol.samples li { font-family: monospace; padding: 4px 0; border-bottom: 1px solid #edf2f7; }

        .histogram { display: flex; align-items: flex-end; height: 200px; gap: 2px; }
        .histogram .bar { flex: 1; background: #667eea; border-radius: 3px 3px 0 0; }
    </style>
</head>
<body>
<div class="container">
    <div class="card">
        <h1>{{.Title}}</h1>
        <p class="subtitle">Run {{.Batch.RunID}}</p>
    </div>

    <div class="card">
        <h2>Statistics</h2>
        <div class="stats">
            <div class="stat"><div class="value">{{.Batch.Stats.Accepted}}</div><div class="label">Programs</div></div>
            <div class="stat"><div class="value">{{.Batch.Stats.Attempts}}</div><div class="label">Attempts</div></div>
            <div class="stat"><div class="value">{{.Batch.Stats.Duplicates}}</div><div class="label">Duplicates</div></div>
            <div class="stat"><div class="value">{{.Batch.Stats.Failures}}</div><div class="label">Failed derivations</div></div>
            <div class="stat"><div class="value">{{printf "%.1f" .Batch.Stats.ProgramsPerSecond}}</div><div class="label">Programs / sec</div></div>
        </div>
    </div>

    {{if .Distribution}}
    <div class="card">
        <h2>Pairwise distance ({{.Distribution.Name}})</h2>
        <p class="subtitle">mean {{printf "%.4f" .Distribution.Mean}}, variance {{printf "%.4f" .Distribution.Variance}}</p>
        <div class="histogram">
            {{range .Bars}}<div class="bar" style="height: {{printf "%.1f" .Percent}}%" title="{{printf "%.3f" .Lower}}: {{.Count}}"></div>{{end}}
        </div>
    </div>
    {{end}}

    <div class="card">
        <h2>Grammar</h2>
        <pre>{{.Batch.GrammarBNF}}</pre>
    </div>

    <div class="card">
        <h2>Sample programs</h2>
        <ol class="samples">
            {{range .Samples}}<li>{{if .}}{{.}}{{else}}&lt;empty&gt;{{end}}</li>{{end}}
        </ol>
    </div>
</div>
</body>
</html>
`
