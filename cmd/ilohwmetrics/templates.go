/*
 * Copyright 2024 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

type indexAppData struct {
	Info          interface{}
	DefaultTarget string
}

const indexTmpl string = `<html>
  <head>
    <title>iLO Hardware Metrics Exporter</title>
    <style>
      .links, .build-info {
        display: flex;
      }
      h3, p {
        padding-right: 1em;
      }
      label {
        display: inline-block;
        width: 90px;
      }
      form label {
        margin: 10px;
      }
      form input {
        margin: 10px;
      }
    </style>
  </head>
  <body>
    <h1>iLO Hardware Metrics Exporter</h1>
    <div class="build-info">
      <p><b>build date:</b> {{ .Info.Date }}</p>
      <p><b>revision:</b> {{ .Info.GitRevision }}</p>
      <p><b>version:</b> {{ .Info.GitVersion }}</p>
    </div>
    <div class="links">
      <h3><a href="info">Build Info</a></h3>
      <h3><a href="metrics">Metrics</a></h3>
      <h3><a href="verbosity">Verbosity</a></h3>
    </div>
    <form action="scrape">
      <label>Target:</label> <input type="text" name="target" placeholder="{{ if .DefaultTarget }}{{ .DefaultTarget }}{{ else }}ip or fqdn{{ end }}"><br>
      <label>Chassis ID:</label> <input type="text" name="chassis_id" placeholder="1"><br>
      <input type="submit" value="Submit">
    </form>
  </body>
</html>
`
