// Package static holds the HTML around the rendered chart and the logs.
package static

var (
	Part1 = `
    <!DOCTYPE html>
    <html>
    <head>
        <title>Generalized Voronoi diagram</title>
		<style>
			body {
				background-color: #1F1F1F; /* dark page background */
				color: #d3d3d3;
				font-family: Consolas, monospace;
				overflow: hidden; /* no page scrolling */
			}

			#container {
				display: flex;
				width: 100%;
				height: 100vh;
				box-sizing: border-box;
			}

			#left-container {
				width: 50%;
				padding: 10px;
				box-sizing: border-box;
			}

			#right-container {
				width: 50%;
				padding: 10px;
				box-sizing: border-box;
				border-left: 5px solid #757575; /* divider between chart and logs */
				overflow-y: auto; /* logs scroll on their own */
				overflow-x: auto;
				background-color: #1e1e1e;
			}

			#logs {
				white-space: pre-wrap; /* keep spacing, wrap lines */
				word-wrap: break-word; /* break long zap fields */
				color: #d3d3d3;
				font-family: Consolas, monospace;
			}

			#chart-container {
				width: 100%;
				height: 400px;
			}

			input[type="number"],
			select,
			input[type="submit"] {
				background-color: #2b2b2b;
				color: #d3d3d3;
				border: 1px solid #444;
				padding: 5px;
				margin: 5px 0;
				border-radius: 4px;
			}

			label {
				color: #d3d3d3;
			}

			h1 {
				color: #d3d3d3;
			}

			input[type="submit"]:hover {
				background-color: #444;
				cursor: pointer;
			}

			/* dark scrollbars */
			::-webkit-scrollbar {
				width: 8px;
			}

			::-webkit-scrollbar-thumb {
				background-color: #444;
				border-radius: 10px;
			}

			::-webkit-scrollbar-track {
				background-color: #2b2b2b;
			}
        </style>
    </head>
    <body>
        <div id="container">
            <div id="left-container">
                <h1>Generalized Voronoi diagram</h1>
                <form id="diagram-form" method="POST">
                    <label for="width">Width (W):</label>
                    <input type="number" id="width" name="width" value="1000" min="100" max="5000"><br><br>
                    <label for="height">Height (H):</label>
                    <input type="number" id="height" name="height" value="1000" min="100" max="5000"><br><br>
                    <label for="points">Points:</label>
                    <input type="number" id="points" name="points" value="8" min="0" max="200"><br><br>
                    <label for="segments">Segments:</label>
                    <input type="number" id="segments" name="segments" value="3" min="0" max="100"><br><br>
                    <label for="arcs">Arcs:</label>
                    <input type="number" id="arcs" name="arcs" value="2" min="0" max="100"><br><br>
                    <label for="random">Layout:</label>
                    <select id="random" name="random">
                        <option value="false">grid</option>
                        <option value="true">random</option>
                    </select><br><br>
                    <input type="submit" value="Build">
                </form>
    `

	Part2 = `
            </div>
            <div id="right-container">
                <h1>Logs</h1>
                <div id="logs">`

	Part3 = `
                </div>
            </div>
        </div>

        <script>
            document.getElementById('diagram-form').addEventListener('submit', function (e) {
                e.preventDefault();
                const formData = new FormData(this);
                const params = new URLSearchParams(formData).toString();

                fetch('/', {
                    method: 'POST',
                    body: params,
                    headers: {
                        'Content-Type': 'application/x-www-form-urlencoded'
                    }
                })
                .then(response => {
                    if (!response.ok) {
                        throw new Error('form submission failed');
                    }
                    return response.text();
                })
                .then(html => {
                    document.open();
                    document.write(html);
                    document.close();
                })
                .catch(error => {
                    console.error('error:', error);
                });
            });
        </script>
    </body>
    </html>
    `
)
