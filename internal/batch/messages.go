package batch

// Messages holds the texts sent to the user during finalize.
// Processing and ReportCaption take one %d argument.
type Messages struct {
	NoFiles       string
	Processing    string
	NoData        string
	ReportCaption string
	Failed        string
	CleanedUp     string
}

// DefaultMessages are the Arabic texts the bot ships with.
var DefaultMessages = Messages{
	NoFiles:       "❌ لم تستلم أي ملفات.",
	Processing:    "⏳ جاري معالجة %d ملف...",
	NoData:        "❌ لا توجد بيانات صالحة.",
	ReportCaption: "✅ تم إنشاء تقرير Excel يحتوي على %d صف.",
	Failed:        "❌ حدث خطأ أثناء إنشاء التقرير.",
	CleanedUp:     "🗑️ تم تنظيف الملفات المؤقتة.",
}
