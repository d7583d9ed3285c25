package report

// downloadStylesheet is tuned for a 750px raster that is scaled onto A4
const downloadStylesheet = `
.report-container {
  font-family: 'Arial', sans-serif;
  max-width: 750px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
  font-size: 14px;
  background-color: #ffffff;
}
.header {
  text-align: center;
  margin-bottom: 20px;
  padding-bottom: 15px;
  border-bottom: 2px solid #4f46e5;
}
.header h1 {
  color: #4f46e5;
  margin: 0;
  font-size: 20px;
}
.header p {
  color: #666;
  margin: 5px 0;
  font-size: 12px;
}
.section {
  margin-bottom: 20px;
}
.section-title {
  color: #4f46e5;
  font-size: 16px;
  margin-bottom: 8px;
  padding-bottom: 4px;
  border-bottom: 1px solid #e5e7eb;
}
.result-box {
  background-color: #f8fafc;
  border: 1px solid #e5e7eb;
  border-radius: 8px;
  padding: 12px;
  margin-bottom: 15px;
}
.result-box h3 {
  font-size: 14px;
  margin: 0 0 8px 0;
}
.result-box p {
  margin: 6px 0;
  line-height: 1.4;
}
.confidence-bar {
  height: 6px;
  background-color: #e5e7eb;
  border-radius: 3px;
  margin: 8px 0;
  overflow: hidden;
}
.confidence-fill {
  height: 100%;
  background-color: #4f46e5;
  border-radius: 3px;
}
.image-container {
  text-align: center;
  margin: 15px 0;
}
.image-container img {
  max-width: 100%;
  max-height: 250px;
  border-radius: 8px;
  box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);
}
.ai-analysis {
  background-color: #f0f9ff;
  border: 1px solid #e0f2fe;
  border-radius: 8px;
  padding: 12px;
  margin-top: 15px;
}
.ai-analysis h3 {
  color: #0369a1;
  margin: 0 0 8px 0;
  font-size: 14px;
}
.ai-section {
  margin-bottom: 12px;
}
.ai-section h4 {
  color: #0369a1;
  margin: 0 0 4px 0;
  font-size: 13px;
}
.ai-section p {
  margin: 4px 0;
  line-height: 1.4;
}
.alternative {
  margin-bottom: 10px;
}
.footer {
  margin-top: 20px;
  padding-top: 15px;
  border-top: 1px solid #e5e7eb;
  font-size: 11px;
  color: #666;
}
p {
  margin: 0 0 8px 0;
  word-wrap: break-word;
  overflow-wrap: break-word;
}
.page-break {
  break-after: page;
  page-break-after: always;
}
@page {
  margin: 20mm;
}
`

// printStylesheet leaves page breaking to the browser's paged media support
const printStylesheet = `
.report-container {
  font-family: 'Arial', sans-serif;
  max-width: 800px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
}
.header {
  text-align: center;
  margin-bottom: 30px;
  padding-bottom: 20px;
  border-bottom: 2px solid #4f46e5;
}
.header h1 {
  color: #4f46e5;
  margin: 0;
  font-size: 24px;
}
.header p {
  color: #666;
  margin: 5px 0;
}
.section {
  margin-bottom: 25px;
}
.section-title {
  color: #4f46e5;
  font-size: 18px;
  margin-bottom: 10px;
  padding-bottom: 5px;
  border-bottom: 1px solid #e5e7eb;
}
.result-box {
  background-color: #f8fafc;
  border: 1px solid #e5e7eb;
  border-radius: 8px;
  padding: 15px;
  margin-bottom: 20px;
}
.confidence-bar {
  height: 8px;
  background-color: #e5e7eb;
  border-radius: 4px;
  margin: 10px 0;
  overflow: hidden;
}
.confidence-fill {
  height: 100%;
  background-color: #4f46e5;
  border-radius: 4px;
}
.image-container {
  text-align: center;
  margin: 20px 0;
}
.image-container img {
  max-width: 100%;
  max-height: 300px;
  border-radius: 8px;
  box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
}
.ai-analysis {
  background-color: #f0f9ff;
  border: 1px solid #e0f2fe;
  border-radius: 8px;
  padding: 15px;
  margin-top: 20px;
}
.ai-analysis h3 {
  color: #0369a1;
  margin-top: 0;
}
.ai-section {
  margin-bottom: 15px;
}
.ai-section h4 {
  color: #0369a1;
  margin-bottom: 5px;
}
.alternative {
  margin-bottom: 10px;
}
.footer {
  margin-top: 30px;
  padding-top: 20px;
  border-top: 1px solid #e5e7eb;
  font-size: 12px;
  color: #666;
}
@media print {
  .report-container {
    padding: 0;
  }
  .page-break {
    page-break-after: always;
  }
}
`

// Stylesheet returns the stylesheet used for mode
func Stylesheet(mode Mode) string {
	if mode == ModePrint {
		return printStylesheet
	}
	return downloadStylesheet
}
