package bot

// Messages holds the texts the bot replies with outside of finalize.
// Received takes the file name and the running count.
type Messages struct {
	Start        string
	OnlyDocx     string
	Received     string
	UploadFailed string
}

// DefaultMessages are the Arabic texts the bot ships with.
var DefaultMessages = Messages{
	Start: "👋 أهلاً بك!\n" +
		"أرسل ملفات Word (DOCX)، واحدة تلو الأخرى.\n" +
		"وعند الانتهاء أرسل: /done",
	OnlyDocx:     "⚠️ أرسل ملفات DOCX فقط.",
	Received:     "📄 تم استلام الملف: %s\nالعدد الإجمالي حتى الآن: %d",
	UploadFailed: "❌ تعذر حفظ الملف، أعد إرساله.",
}
