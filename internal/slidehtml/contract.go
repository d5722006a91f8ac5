package slidehtml

// Contract is the fixed structural contract every authored slide must follow.
// It is appended to every authoring, repair, and edit prompt. The validator
// enforces the mechanical subset of it.
const Contract = `
You MUST return a single, complete HTML document for ONE slide. No markdown fences.

CDNs:
- Tailwind: <script src="https://cdn.tailwindcss.com"></script>
- Chart.js: <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
No other external JS.

CONTENT (strict):
- Exactly one <h1> title (<= 55 characters), body text <= 40 words total.
- Professional, concise, scannable. One focal element.
- If you include data/metrics/trends, add ONE Chart.js chart.

CANVAS & LAYOUT:
- Slide size fixed to 1280x720, white #FFFFFF background.
- <body> styles: width:1280px; height:720px; margin:0; padding:0; overflow:hidden;
- Main container: max-width:1280px; max-height:720px; margin:0 auto;
- Content area: padding:16px; box-sizing:border-box;
- Use flex layout: column; justify-between; gap >= 12px; min-height:0 on flex children.
- All boxes/cards symmetrical; padding >= 16px; margin/gap >= 12px; border-radius 8-12px; borders 1-2px #B2BAC0.
- Responsive within 1280x720; NO overflow or clipping. Wrap/ellipsize gracefully; never exceed viewport.

TYPOGRAPHY:
- Modern geometric sans (Inter/SF/Helvetica Now).
- H1 bold 40-52px; H2 28-36; H3 24-28; body 16-18; captions 12-14.
- Title color: Navy 900 #102025 ONLY (not gray). Subtitles: Navy 800 #2B3940. Body: #5D6D71; captions: #8D8E93.

BRAND PALETTE (hex):
Primary: Lava 600 #EB4A34; Lava 500 #EB6C53; Navy 900 #102025; Navy 800 #2B3940
Neutrals: Oat Light #F9FAFB; Oat Medium #E4E5E5; Gray-Text #5D6D71; Gray-Muted #8D8E93; Gray-Lines #B2BAC0
Accents: Green 600 #4BA676; Yellow 600 #F2AE3D; Blue 600 #3C71AF; Maroon 600 #8C2330

USAGE RULES:
- Backgrounds: Oat Light; Oat Medium sparingly for bands/sidebars.
- Emphasis/callouts/buttons: Lava 600; hover/secondary: Lava 500.
- Status: Success=Green, Warning=Yellow, Info=Blue, Critical=Lava/Maroon (<= 1 per slide).
- Maintain high contrast; ensure all colors visible on white.

CHART (only if needed):
- Types: bar/line/pie/doughnut/area/radar/scatter.
- Colors (brand): ['#EB4A34','#4BA676','#3C71AF','#F2AE3D'].
- Container with 12px outer margin; chart max-height 200px; maintainAspectRatio:false; labels, legend, tooltips enabled.

STRICT VALIDATION:
- One <h1> only, in Navy 900.
- No external deps beyond the two CDNs.
- No content overflow; nothing outside 1280x720; no horizontal scrollbars.
- Return ONLY the HTML document.
`

// allowedScriptSrcSubstrings whitelists external script sources.
var allowedScriptSrcSubstrings = []string{"tailwindcss.com", "chart.js"}

// allowedInlineScriptKeywords whitelists benign inline scripts: chart setup
// and Tailwind configuration only.
var allowedInlineScriptKeywords = []string{
	"new chart",
	"chart.register",
	"chart.defaults",
	"chart.data",
	"chart.options",
	"chart.update",
	"tailwind.config",
}
