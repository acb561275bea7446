package rod

// HTML fixtures served by httptest in the adapter tests.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	NameFormHTML = `<!DOCTYPE html>
<html>
<body style="margin:0">
	<form id="applicant">
		<input id="given" type="text" name="FirstName" placeholder="Given name" />
		<input id="family" type="text" name="applicant_surname" aria-label="Family name" />
	</form>
</body>
</html>`

	ReadonlyDecoyHTML = `<!DOCTYPE html>
<html>
<body style="margin:0">
	<form id="applicant">
		<input id="visit" type="text" name="first_visit_flag" value="yes" readonly />
		<input id="legacy" type="text" name="first_name_legacy" disabled />
		<input id="given" type="text" name="FirstName" />
	</form>
</body>
</html>`

	ButtonHTML = `<!DOCTYPE html>
<html>
<body style="margin:0">
	<button id="apply" class="apply" style="position:absolute;left:100px;top:200px;width:80px;height:40px">Apply</button>
	<div id="result"></div>
	<script>
		document.getElementById('apply').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`
)
