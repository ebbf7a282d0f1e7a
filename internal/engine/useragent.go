package engine

// UserAgentCSS is the default sheet placed before every author sheet when a
// context is created with WithUserAgentSheet.
const UserAgentCSS = `
div, p, h1, h2, h3, h4, h5, h6, body, html, ul, ol, li, form, header, footer, section, article, nav, main {
    display: block;
    margin: 0;
    padding: 0;
}

head, style, script, link, title, meta { display: none; }

body { margin: 8px; }

h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
h2 { font-size: 1.5em; margin: 0.83em 0; font-weight: bold; }
h3 { font-size: 1.17em; margin: 1em 0; font-weight: bold; }
p { margin: 1em 0; }

b, strong { font-weight: bold; }
i, em { font-style: italic; }
pre { display: block; white-space: pre; margin: 1em 0; }

ul, ol { padding-left: 40px; }

input, button, textarea, select {
    display: inline-block;
    box-sizing: border-box;
    margin: 2px 0;
    padding: 1px 2px;
    border-width: 1px;
    border-color: #767676;
    font-size: inherit;
    line-height: normal;
}

input { width: 170px; }

input[type="checkbox"], input[type="radio"] {
    width: 13px;
    height: 13px;
    padding: 0;
    margin: 3px;
}

button, input[type="submit"], input[type="button"], input[type="reset"] {
    width: auto;
    height: auto;
    padding: 1px 6px;
    text-align: center;
}

a {
    color: #0000EE;
    text-decoration: underline;
    cursor: pointer;
}
`
