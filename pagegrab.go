// Package pagegrab provides two small command-line pipelines for pulling
// visual assets out of web pages. The icon pipeline fetches a page, archives
// it, and extracts <img> sources and <svg> path data into a JSON file. The
// image pipeline scans a page for embedded imageUrl/title pairs and downloads
// each image into a local folder.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, rod/).
package pagegrab
